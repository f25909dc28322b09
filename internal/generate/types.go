package generate

import (
	"math/rand"

	"github.com/LuisCarretero/grammar-vae/internal/grammar"
	"github.com/LuisCarretero/grammar-vae/internal/selector"
)

// DefaultMaxLength is the step budget when Options.MaxLength is unset.
const DefaultMaxLength = 15

// #region options
// Options control a single generation call.
type Options struct {
	Mode      selector.Mode
	MaxLength int
	// Rand feeds stochastic selection. Required when Mode is Stochastic.
	Rand *rand.Rand
}

func (o Options) maxLength() int {
	if o.MaxLength <= 0 {
		return DefaultMaxLength
	}
	return o.MaxLength
}

// #endregion options

// #region result
// Result is the outcome of one generation call.
type Result struct {
	// Rules holds the catalog index of every applied rule, in order.
	Rules      []int
	Derivation grammar.Derivation
	Steps      int
	// Truncated is true when the step budget ran out with nonterminals still
	// pending. The derivation is then not a complete string.
	Truncated bool
	// Pending lists the unexpanded nonterminals, leftmost first.
	Pending []string
}

// #endregion result
