package grammar

import (
	"fmt"
	"slices"
	"strings"
)

// #region catalog
// Catalog is an immutable, indexed set of production rules with a start
// symbol. Rule order is fixed at construction and defines the index used by
// masks, score matrices and derivations. A Catalog is never mutated after
// NewCatalog returns, so it can be shared across goroutines without locking.
type Catalog struct {
	start        string
	rules        []Rule
	index        map[string]int
	byLHS        map[string][]int
	nonterminals []string
}

// NewCatalog validates the ruleset and builds a catalog. Every nonterminal on
// a right-hand side must be the left-hand side of some rule.
func NewCatalog(start string, rules []Rule) (*Catalog, error) {
	if start == "" {
		return nil, fmt.Errorf("%w: empty start symbol", ErrConfiguration)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrConfiguration)
	}

	c := &Catalog{
		start: start,
		rules: make([]Rule, len(rules)),
		index: make(map[string]int, len(rules)),
		byLHS: make(map[string][]int),
	}
	for i, r := range rules {
		if r.LHS == "" {
			return nil, fmt.Errorf("%w: rule %d has empty left-hand side", ErrConfiguration, i)
		}
		rhs := make([]Symbol, len(r.RHS))
		copy(rhs, r.RHS)
		r = Rule{LHS: r.LHS, RHS: rhs}

		key := ruleKey(r)
		if prev, dup := c.index[key]; dup {
			return nil, fmt.Errorf("%w: rule %d (%s) duplicates rule %d", ErrConfiguration, i, r, prev)
		}
		c.index[key] = i
		c.rules[i] = r
		if _, seen := c.byLHS[r.LHS]; !seen {
			c.nonterminals = append(c.nonterminals, r.LHS)
		}
		c.byLHS[r.LHS] = append(c.byLHS[r.LHS], i)
	}

	if _, ok := c.byLHS[start]; !ok {
		return nil, fmt.Errorf("%w: start symbol %s has no rule", ErrConfiguration, start)
	}
	for i, r := range c.rules {
		for _, s := range r.RHS {
			if !s.IsNonterminal() {
				continue
			}
			if _, ok := c.byLHS[s.Name]; !ok {
				return nil, fmt.Errorf("%w: nonterminal %s in rule %d (%s) has no expansion", ErrConfiguration, s.Name, i, r)
			}
		}
	}
	return c, nil
}

// #endregion catalog

// #region accessors
// Start returns the designated start nonterminal.
func (c *Catalog) Start() string { return c.start }

// Size returns the number of rules.
func (c *Catalog) Size() int { return len(c.rules) }

// Productions returns the rules in catalog order. The rules are deep copies.
func (c *Catalog) Productions() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.clone()
	}
	return out
}

// RuleAt returns the rule at index i.
func (c *Catalog) RuleAt(i int) (Rule, error) {
	if i < 0 || i >= len(c.rules) {
		return Rule{}, fmt.Errorf("%w: %d (size %d)", ErrRuleIndex, i, len(c.rules))
	}
	return c.rules[i].clone(), nil
}

// IndexOf returns the catalog index of r.
func (c *Catalog) IndexOf(r Rule) (int, error) {
	i, ok := c.index[ruleKey(r)]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownRule, r)
	}
	return i, nil
}

// Nonterminals lists every left-hand side in first-appearance order.
func (c *Catalog) Nonterminals() []string {
	out := make([]string, len(c.nonterminals))
	copy(out, c.nonterminals)
	return out
}

// RulesFor returns the indices of the rules expanding nt, in catalog order.
func (c *Catalog) RulesFor(nt string) []int {
	idx := c.byLHS[nt]
	out := make([]int, len(idx))
	copy(out, idx)
	return out
}

// Indices maps a derivation back to rule indices.
func (c *Catalog) Indices(d Derivation) ([]int, error) {
	out := make([]int, len(d))
	for i, r := range d {
		idx, err := c.IndexOf(r)
		if err != nil {
			return nil, fmt.Errorf("derivation step %d: %w", i, err)
		}
		out[i] = idx
	}
	return out, nil
}

// Resolve maps rule indices to a derivation.
func (c *Catalog) Resolve(indices []int) (Derivation, error) {
	out := make(Derivation, len(indices))
	for i, idx := range indices {
		r, err := c.RuleAt(idx)
		if err != nil {
			return nil, fmt.Errorf("derivation step %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

// #endregion accessors

// #region mask
// Mask returns a vector of length Size() with 1 at every rule whose
// left-hand side is nt. An unknown nt yields an all-zero mask.
func (c *Catalog) Mask(nt string) Mask {
	m := make(Mask, len(c.rules))
	for _, i := range c.byLHS[nt] {
		m[i] = 1
	}
	return m
}

// #endregion mask

// #region helpers
func (r Rule) clone() Rule {
	return Rule{LHS: r.LHS, RHS: slices.Clone(r.RHS)}
}

func ruleKey(r Rule) string {
	var b strings.Builder
	b.WriteString(r.LHS)
	for _, s := range r.RHS {
		b.WriteByte(0)
		if s.IsNonterminal() {
			b.WriteByte('N')
		} else {
			b.WriteByte('T')
		}
		b.WriteString(s.Name)
	}
	return b.String()
}

// #endregion helpers
