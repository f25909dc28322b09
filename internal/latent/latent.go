package latent

import (
	"fmt"
	"math"
	"math/rand"
)

// #region sampler
// Sampler draws latent vectors with the reparameterization trick.
type Sampler struct {
	Rand  *rand.Rand
	Param Parameterization
}

// NewSampler returns a sampler over rng. A nil rng uses a fixed seed of 1.
func NewSampler(rng *rand.Rand, param Parameterization) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if param == "" {
		param = LogVariance
	}
	return &Sampler{Rand: rng, Param: param}
}

// Sample returns z = mu + eps*scale(sigma), drawing one standard-normal eps
// per dimension in index order.
func (s *Sampler) Sample(mu, sigma []float64) ([]float64, error) {
	if len(mu) != len(sigma) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimension, len(mu), len(sigma))
	}
	z := make([]float64, len(mu))
	for i := range mu {
		eps := s.Rand.NormFloat64()
		var scale float64
		switch s.Param {
		case SqrtVariance:
			if sigma[i] < 0 {
				return nil, fmt.Errorf("%w: sigma[%d]=%g", ErrNegativeVariance, i, sigma[i])
			}
			scale = math.Sqrt(sigma[i])
		default:
			scale = math.Exp(0.5 * sigma[i])
		}
		z[i] = mu[i] + eps*scale
	}
	return z, nil
}

// Prior draws z from the standard-normal prior.
func (s *Sampler) Prior(dim int) []float64 {
	z := make([]float64, dim)
	for i := range z {
		z[i] = s.Rand.NormFloat64()
	}
	return z
}

// #endregion sampler

// #region kl
// KL returns the divergence of N(mu, exp(sigma)) from N(0, I), with sigma
// read as a log-variance. It is zero when mu and sigma are both zero.
func KL(mu, sigma []float64) (float64, error) {
	if len(mu) != len(sigma) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimension, len(mu), len(sigma))
	}
	var sum float64
	for i := range mu {
		sum += 1 + sigma[i] - mu[i]*mu[i] - math.Exp(sigma[i])
	}
	return -0.5 * sum, nil
}

// BatchKL averages KL over a batch of (mu, sigma) rows.
func BatchKL(mus, sigmas [][]float64) (float64, error) {
	if len(mus) == 0 {
		return 0, ErrEmptyBatch
	}
	if len(mus) != len(sigmas) {
		return 0, fmt.Errorf("%w: batch %d vs %d", ErrDimension, len(mus), len(sigmas))
	}
	var total float64
	for i := range mus {
		kl, err := KL(mus[i], sigmas[i])
		if err != nil {
			return 0, fmt.Errorf("batch row %d: %w", i, err)
		}
		total += kl
	}
	return total / float64(len(mus)), nil
}

// #endregion kl
