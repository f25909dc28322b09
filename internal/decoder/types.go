package decoder

import (
	"context"
	"errors"
	"fmt"
)

// #region errors
var (
	// ErrShortScores marks a decoder that returned fewer rows than requested.
	ErrShortScores = errors.New("decoder returned fewer score rows than max length")
	ErrRowWidth    = errors.New("score row width does not match rule count")
	ErrLatentDim   = errors.New("latent dimension mismatch")
	ErrInputShape  = errors.New("encoder input shape mismatch")
)

// #endregion errors

// #region interfaces
// ScoreMatrix holds one row of per-rule log-scores per derivation step.
type ScoreMatrix [][]float64

// Decoder maps a latent vector to at least maxLength score rows, each as wide
// as the grammar catalog.
type Decoder interface {
	Decode(ctx context.Context, z []float64, maxLength int) (ScoreMatrix, error)
}

// Encoder maps a one-hot rule sequence to the mean and (log-)variance of the
// approximate posterior.
type Encoder interface {
	Encode(ctx context.Context, x [][]float64) (mu, sigma []float64, err error)
}

// #endregion interfaces

// #region validate
// Validate checks a decoder result against the caller's expectations.
func Validate(m ScoreMatrix, maxLength, ruleCount int) error {
	if len(m) < maxLength {
		return fmt.Errorf("%w: got %d, want %d", ErrShortScores, len(m), maxLength)
	}
	for t := 0; t < maxLength; t++ {
		if len(m[t]) != ruleCount {
			return fmt.Errorf("%w: row %d has %d entries, catalog has %d", ErrRowWidth, t, len(m[t]), ruleCount)
		}
	}
	return nil
}

// #endregion validate
