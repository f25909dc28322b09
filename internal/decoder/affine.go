package decoder

import (
	"context"
	"fmt"
	"math/rand"
)

// #region affine-decoder
// Affine is a deterministic decoder: row t of the score matrix is W_t·z + b_t.
// It stands in for a trained network when none is reachable.
type Affine struct {
	zDim    int
	rules   int
	weights [][][]float64 // [step][rule][zDim]
	bias    [][]float64   // [step][rule]
}

// NewAffine initializes weights from N(0, std²) with a fixed seed.
func NewAffine(zDim, ruleCount, steps int, seed int64, std float64) *Affine {
	rng := rand.New(rand.NewSource(seed))
	a := &Affine{
		zDim:    zDim,
		rules:   ruleCount,
		weights: make([][][]float64, steps),
		bias:    make([][]float64, steps),
	}
	for t := 0; t < steps; t++ {
		a.weights[t] = make([][]float64, ruleCount)
		a.bias[t] = make([]float64, ruleCount)
		for r := 0; r < ruleCount; r++ {
			row := make([]float64, zDim)
			for j := range row {
				row[j] = rng.NormFloat64() * std
			}
			a.weights[t][r] = row
			a.bias[t][r] = rng.NormFloat64() * std
		}
	}
	return a
}

// Steps returns how many score rows the decoder can produce.
func (a *Affine) Steps() int { return len(a.weights) }

// Decode returns min(maxLength, Steps()) rows. Asking for more rows than the
// decoder holds yields a short matrix, which Validate rejects.
func (a *Affine) Decode(ctx context.Context, z []float64, maxLength int) (ScoreMatrix, error) {
	if len(z) != a.zDim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLatentDim, len(z), a.zDim)
	}
	n := maxLength
	if n > len(a.weights) {
		n = len(a.weights)
	}
	out := make(ScoreMatrix, n)
	for t := 0; t < n; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := make([]float64, a.rules)
		for r := 0; r < a.rules; r++ {
			s := a.bias[t][r]
			for j, w := range a.weights[t][r] {
				s += w * z[j]
			}
			row[r] = s
		}
		out[t] = row
	}
	return out, nil
}

// #endregion affine-decoder

// #region affine-encoder
// AffineEncoder flattens a steps x rules one-hot matrix and projects it to
// mu and sigma.
type AffineEncoder struct {
	steps, rules, zDim int
	wMu, wSigma        [][]float64 // [zDim][steps*rules]
}

// NewAffineEncoder initializes both projections from N(0, std²).
func NewAffineEncoder(steps, ruleCount, zDim int, seed int64, std float64) *AffineEncoder {
	rng := rand.New(rand.NewSource(seed))
	in := steps * ruleCount
	e := &AffineEncoder{steps: steps, rules: ruleCount, zDim: zDim}
	e.wMu = randomMatrix(rng, zDim, in, std)
	e.wSigma = randomMatrix(rng, zDim, in, std)
	return e
}

// Encode projects x to (mu, sigma).
func (e *AffineEncoder) Encode(ctx context.Context, x [][]float64) ([]float64, []float64, error) {
	if len(x) != e.steps {
		return nil, nil, fmt.Errorf("%w: %d rows, want %d", ErrInputShape, len(x), e.steps)
	}
	flat := make([]float64, 0, e.steps*e.rules)
	for t, row := range x {
		if len(row) != e.rules {
			return nil, nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrInputShape, t, len(row), e.rules)
		}
		flat = append(flat, row...)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return matvec(e.wMu, flat), matvec(e.wSigma, flat), nil
}

// #endregion affine-encoder

// #region helpers
func randomMatrix(rng *rand.Rand, rows, cols int, std float64) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = rng.NormFloat64() * std
		}
	}
	return m
}

func matvec(m [][]float64, x []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		var s float64
		for j, w := range row {
			s += w * x[j]
		}
		out[i] = s
	}
	return out
}

// #endregion helpers
