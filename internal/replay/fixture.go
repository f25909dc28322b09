package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/LuisCarretero/grammar-vae/internal/decoder"
	"github.com/LuisCarretero/grammar-vae/internal/grammar"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Grammar     *grammar.File `json:"grammar,omitempty"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one recorded score matrix and the derivation expected from it.
type FixtureCase struct {
	Name      string              `json:"name"`
	Mode      string              `json:"mode"`
	Seed      int64               `json:"seed"`
	MaxLength int                 `json:"max_length"`
	Scores    decoder.ScoreMatrix `json:"scores"`

	ExpectedRules      []int  `json:"expected_rules"`
	ExpectedTruncated  bool   `json:"expected_truncated"`
	ExpectedExpression string `json:"expected_expression,omitempty"`
	// ExpectedError is "" or one of "decoder_contract", "invalid_mask".
	ExpectedError string `json:"expected_error,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Catalog builds the fixture's grammar, or the default grammar when the
// fixture names none.
func (f *Fixture) Catalog() (*grammar.Catalog, error) {
	if f.Grammar == nil {
		return grammar.Default(), nil
	}
	return f.Grammar.Catalog()
}

// #endregion fixture-loader
