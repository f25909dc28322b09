package selector

import (
	"errors"
	"fmt"
	"strings"
)

// #region errors
var (
	// ErrInvalidMask is returned when no rule survives masking.
	ErrInvalidMask = errors.New("mask leaves no valid rule")
	ErrLength      = errors.New("score and mask lengths differ")
)

// #endregion errors

// #region mode
// Mode selects how a rule is picked from the masked distribution.
type Mode int

const (
	Greedy Mode = iota
	Stochastic
)

func (m Mode) String() string {
	if m == Stochastic {
		return "stochastic"
	}
	return "greedy"
}

// ParseMode accepts "greedy"/"argmax" or "stochastic"/"sample".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "greedy", "argmax", "":
		return Greedy, nil
	case "stochastic", "sample":
		return Stochastic, nil
	}
	return Greedy, fmt.Errorf("unknown selection mode %q", s)
}

// #endregion mode
