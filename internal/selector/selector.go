package selector

import (
	"fmt"
	"math"
	"math/rand"
)

// #region probabilities
// Probabilities exponentiates the log-scores, zeroes every entry the mask
// forbids and normalizes the rest. Entries outside the mask are exactly 0.
//
// The exponent is shifted by the largest allowed score before exp; the
// normalized result is unchanged and large scores do not overflow.
func Probabilities(scores []float64, mask []float64) ([]float64, error) {
	if len(scores) != len(mask) {
		return nil, fmt.Errorf("%w: %d scores, %d mask entries", ErrLength, len(scores), len(mask))
	}

	shift := math.Inf(-1)
	for i, m := range mask {
		if m != 0 && scores[i] > shift {
			shift = scores[i]
		}
	}
	if math.IsInf(shift, -1) {
		return nil, ErrInvalidMask
	}

	probs := make([]float64, len(scores))
	var sum float64
	for i, m := range mask {
		if m == 0 {
			continue
		}
		probs[i] = m * math.Exp(scores[i]-shift)
		sum += probs[i]
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("%w: normalizer %v", ErrInvalidMask, sum)
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

// #endregion probabilities

// #region select
// Select picks one rule index from the masked distribution. Greedy returns
// the first index of the maximum; Stochastic draws once from rng.
func Select(scores []float64, mask []float64, mode Mode, rng *rand.Rand) (int, error) {
	probs, err := Probabilities(scores, mask)
	if err != nil {
		return -1, err
	}
	if mode == Stochastic {
		if rng == nil {
			return -1, fmt.Errorf("stochastic selection needs a random source")
		}
		return Sample(probs, rng), nil
	}
	return Argmax(probs), nil
}

// Argmax returns the lowest index holding the maximum value.
func Argmax(probs []float64) int {
	best := -1
	for i, p := range probs {
		if best < 0 || p > probs[best] {
			best = i
		}
	}
	return best
}

// Sample draws an index from a normalized distribution. Zero-probability
// entries are never returned.
func Sample(probs []float64, rng *rand.Rand) int {
	r := rng.Float64()
	var running float64
	last := -1
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		last = i
		running += p
		if r < running {
			return i
		}
	}
	return last
}

// #endregion select
