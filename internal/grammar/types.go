package grammar

import (
	"errors"
	"strings"
)

// #region errors
var (
	// ErrConfiguration marks a ruleset that cannot be turned into a catalog.
	ErrConfiguration = errors.New("grammar configuration")
	ErrRuleIndex     = errors.New("rule index out of range")
	ErrUnknownRule   = errors.New("rule not in catalog")
)

// #endregion errors

// #region symbol
// Kind tags a grammar symbol as terminal or nonterminal.
type Kind int

const (
	Terminal Kind = iota
	Nonterminal
)

func (k Kind) String() string {
	if k == Nonterminal {
		return "nonterminal"
	}
	return "terminal"
}

// Symbol is one entry on the right-hand side of a rule.
type Symbol struct {
	Kind Kind
	Name string
}

// T builds a terminal symbol.
func T(name string) Symbol { return Symbol{Kind: Terminal, Name: name} }

// N builds a nonterminal symbol.
func N(name string) Symbol { return Symbol{Kind: Nonterminal, Name: name} }

func (s Symbol) IsNonterminal() bool { return s.Kind == Nonterminal }

func (s Symbol) String() string {
	if s.Kind == Terminal {
		return "'" + s.Name + "'"
	}
	return s.Name
}

// #endregion symbol

// #region rule
// Rule is a production LHS -> RHS. Its identity within a catalog is its index.
type Rule struct {
	LHS string
	RHS []Symbol
}

// NewRule builds a rule from a left-hand side and its symbols.
func NewRule(lhs string, rhs ...Symbol) Rule {
	return Rule{LHS: lhs, RHS: rhs}
}

// Equal reports whether two rules have the same LHS and RHS.
func (r Rule) Equal(o Rule) bool {
	if r.LHS != o.LHS || len(r.RHS) != len(o.RHS) {
		return false
	}
	for i := range r.RHS {
		if r.RHS[i] != o.RHS[i] {
			return false
		}
	}
	return true
}

// String renders the rule as `S -> 'a' A`.
func (r Rule) String() string {
	parts := make([]string, len(r.RHS))
	for i, s := range r.RHS {
		parts[i] = s.String()
	}
	if len(parts) == 0 {
		return r.LHS + " -> "
	}
	return r.LHS + " -> " + strings.Join(parts, " ")
}

// Nonterminals returns the RHS nonterminals in left-to-right order.
func (r Rule) Nonterminals() []string {
	var out []string
	for _, s := range r.RHS {
		if s.IsNonterminal() {
			out = append(out, s.Name)
		}
	}
	return out
}

// #endregion rule

// #region derivation
// Derivation is the ordered, append-only list of applied rules.
type Derivation []Rule

func (d Derivation) String() string {
	parts := make([]string, len(d))
	for i, r := range d {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// #endregion derivation

// #region mask
// Mask is a {0,1} vector over the catalog's rules.
type Mask []float64

// Any reports whether at least one rule is allowed.
func (m Mask) Any() bool {
	for _, v := range m {
		if v != 0 {
			return true
		}
	}
	return false
}

// Count returns the number of allowed rules.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v != 0 {
			n++
		}
	}
	return n
}

// #endregion mask
