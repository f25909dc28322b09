package latent

import (
	"errors"
	"fmt"
	"strings"
)

// #region errors
var (
	ErrDimension        = errors.New("mu and sigma dimensions differ")
	ErrNegativeVariance = errors.New("negative variance under sqrt parameterization")
	ErrEmptyBatch       = errors.New("empty batch")
)

// #endregion errors

// #region parameterization
// Parameterization selects how the encoder's sigma output scales the noise.
type Parameterization string

const (
	// LogVariance treats sigma as log(σ²): z = mu + eps*exp(sigma/2).
	// This matches the closed-form KL term.
	LogVariance Parameterization = "log_variance"
	// SqrtVariance treats sigma as σ²: z = mu + eps*sqrt(sigma).
	SqrtVariance Parameterization = "sqrt_variance"
)

// ParseParameterization accepts "log_variance" or "sqrt_variance".
func ParseParameterization(s string) (Parameterization, error) {
	switch Parameterization(strings.ToLower(strings.TrimSpace(s))) {
	case LogVariance, "":
		return LogVariance, nil
	case SqrtVariance:
		return SqrtVariance, nil
	}
	return "", fmt.Errorf("unknown parameterization %q", s)
}

// #endregion parameterization
