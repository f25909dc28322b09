package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDerivationMismatch is returned when a rule does not expand the leftmost
// pending nonterminal.
var ErrDerivationMismatch = errors.New("derivation does not match leftmost nonterminal")

// #region yield
// Yield replays a leftmost derivation from start and returns the resulting
// sentential form. complete is false when nonterminals remain unexpanded,
// which is the normal outcome of a truncated generation.
func Yield(start string, d Derivation) (form []Symbol, complete bool, err error) {
	form = []Symbol{N(start)}
	for step, r := range d {
		pos := -1
		for i, s := range form {
			if s.IsNonterminal() {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil, false, fmt.Errorf("%w: step %d (%s) applied to a finished string", ErrDerivationMismatch, step, r)
		}
		if form[pos].Name != r.LHS {
			return nil, false, fmt.Errorf("%w: step %d expands %s with %s", ErrDerivationMismatch, step, form[pos].Name, r)
		}
		next := make([]Symbol, 0, len(form)-1+len(r.RHS))
		next = append(next, form[:pos]...)
		next = append(next, r.RHS...)
		next = append(next, form[pos+1:]...)
		form = next
	}
	for _, s := range form {
		if s.IsNonterminal() {
			return form, false, nil
		}
	}
	return form, true, nil
}

// Render joins a sentential form into text. Terminals are concatenated as-is;
// pending nonterminals are shown by name.
func Render(form []Symbol) string {
	var b strings.Builder
	for _, s := range form {
		b.WriteString(s.Name)
	}
	return b.String()
}

// #endregion yield

// #region one-hot
// OneHot encodes a sequence of rule indices as a maxLength x Size() matrix.
// Rows past the end of the sequence stay zero; indices past maxLength are
// dropped.
func (c *Catalog) OneHot(indices []int, maxLength int) ([][]float64, error) {
	out := make([][]float64, maxLength)
	for t := range out {
		out[t] = make([]float64, len(c.rules))
	}
	for t, idx := range indices {
		if t >= maxLength {
			break
		}
		if idx < 0 || idx >= len(c.rules) {
			return nil, fmt.Errorf("one-hot step %d: %w: %d", t, ErrRuleIndex, idx)
		}
		out[t][idx] = 1
	}
	return out, nil
}

// #endregion one-hot
