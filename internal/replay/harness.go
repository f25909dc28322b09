package replay

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/LuisCarretero/grammar-vae/internal/decoder"
	"github.com/LuisCarretero/grammar-vae/internal/generate"
	"github.com/LuisCarretero/grammar-vae/internal/grammar"
	"github.com/LuisCarretero/grammar-vae/internal/selector"
)

// #region types
// CaseResult captures the outcome of replaying one fixture case.
type CaseResult struct {
	Name       string
	Rules      []int
	Steps      int
	Truncated  bool
	Expression string
	ErrorKind  string
	Err        error

	Passed bool
	Reason string
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total     int
	Passed    int
	Failed    int
	Truncated int
	Errors    int
}

// #endregion types

// #region replay
// Replay runs every case of the fixture through the derivation loop. It only
// fails outright when the fixture's grammar cannot be built; per-case
// problems are reported in the results.
func Replay(f *Fixture) ([]CaseResult, error) {
	c, err := f.Catalog()
	if err != nil {
		return nil, fmt.Errorf("fixture grammar: %w", err)
	}
	results := make([]CaseResult, 0, len(f.Cases))
	for _, fc := range f.Cases {
		results = append(results, replayCase(c, fc))
	}
	return results, nil
}

func replayCase(c *grammar.Catalog, fc FixtureCase) CaseResult {
	r := CaseResult{Name: fc.Name}

	mode, err := selector.ParseMode(fc.Mode)
	if err != nil {
		return failCase(r, fc, "config", err)
	}
	res, err := generate.Run(c, fc.Scores, generate.Options{
		Mode:      mode,
		MaxLength: fc.MaxLength,
		Rand:      rand.New(rand.NewSource(fc.Seed)),
	})
	if err != nil {
		return failCase(r, fc, ErrorKind(err), err)
	}

	r.Rules = res.Rules
	r.Steps = res.Steps
	r.Truncated = res.Truncated
	if form, complete, err := grammar.Yield(c.Start(), res.Derivation); err == nil && complete {
		r.Expression = grammar.Render(form)
	}

	switch {
	case fc.ExpectedError != "":
		r.Reason = fmt.Sprintf("expected error %s, got none", fc.ExpectedError)
	case !equalInts(r.Rules, fc.ExpectedRules):
		r.Reason = fmt.Sprintf("rules %v, want %v", r.Rules, fc.ExpectedRules)
	case r.Truncated != fc.ExpectedTruncated:
		r.Reason = fmt.Sprintf("truncated=%v, want %v", r.Truncated, fc.ExpectedTruncated)
	case fc.ExpectedExpression != "" && r.Expression != fc.ExpectedExpression:
		r.Reason = fmt.Sprintf("expression %q, want %q", r.Expression, fc.ExpectedExpression)
	default:
		r.Passed = true
		r.Reason = "match"
	}
	return r
}

// failCase records err on r. The case passes when the fixture expected an
// error of this kind.
func failCase(r CaseResult, fc FixtureCase, kind string, err error) CaseResult {
	r.Err = err
	r.ErrorKind = kind
	r.Passed = fc.ExpectedError != "" && fc.ExpectedError == kind
	if r.Passed {
		r.Reason = "expected error " + kind
	} else {
		r.Reason = fmt.Sprintf("unexpected error: %v", err)
	}
	return r
}

// ErrorKind names a generation error for fixtures and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, decoder.ErrShortScores), errors.Is(err, decoder.ErrRowWidth):
		return "decoder_contract"
	case errors.Is(err, selector.ErrInvalidMask):
		return "invalid_mask"
	}
	return "other"
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []CaseResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		if r.Truncated {
			s.Truncated++
		}
		if r.Err != nil {
			s.Errors++
		}
	}
	return s
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// #endregion replay
