package model

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/LuisCarretero/grammar-vae/internal/decoder"
	"github.com/LuisCarretero/grammar-vae/internal/generate"
	"github.com/LuisCarretero/grammar-vae/internal/grammar"
	"github.com/LuisCarretero/grammar-vae/internal/latent"
	"github.com/LuisCarretero/grammar-vae/internal/selector"
)

const zDim = 6

func newModel(seed int64) *Model {
	c := grammar.Default()
	enc := decoder.NewAffineEncoder(generate.DefaultMaxLength, c.Size(), zDim, 1, 0.1)
	dec := decoder.NewAffine(zDim, c.Size(), generate.DefaultMaxLength, 2, 1)
	s := latent.NewSampler(rand.New(rand.NewSource(seed)), latent.LogVariance)
	return New(c, enc, dec, s, nil)
}

func TestForward_Shapes(t *testing.T) {
	m := newModel(1)
	x, err := m.Catalog.OneHot([]int{3, 7}, generate.DefaultMaxLength)
	if err != nil {
		t.Fatalf("OneHot: %v", err)
	}
	out, err := m.Forward(context.Background(), x, generate.DefaultMaxLength)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if len(out.Z) != zDim || len(out.Mu) != zDim || len(out.Sigma) != zDim {
		t.Fatalf("unexpected latent sizes %d/%d/%d", len(out.Z), len(out.Mu), len(out.Sigma))
	}
	if err := decoder.Validate(out.Scores, generate.DefaultMaxLength, m.Catalog.Size()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if out.KL < 0 {
		t.Fatalf("KL must be non-negative, got %v", out.KL)
	}
}

func TestForward_BadInput(t *testing.T) {
	m := newModel(1)
	if _, err := m.Forward(context.Background(), [][]float64{{1}}, 3); err == nil {
		t.Fatal("expected encoder shape error")
	}
}

func TestReconstruct_ValidDerivation(t *testing.T) {
	m := newModel(3)
	d, err := m.Catalog.Resolve([]int{0, 3, 7, 8})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	res, z, err := m.Reconstruct(context.Background(), d, generate.Options{Mode: selector.Stochastic})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(z) != zDim {
		t.Fatalf("expected z of dim %d, got %d", zDim, len(z))
	}
	if _, _, err := grammar.Yield(m.Catalog.Start(), res.Derivation); err != nil {
		t.Fatalf("Yield: %v", err)
	}
}

func TestReconstruct_TooLong(t *testing.T) {
	m := newModel(3)
	// S -> S '+' T applied 15 times, then S -> T.
	indices := make([]int, 0, generate.DefaultMaxLength+1)
	for i := 0; i < generate.DefaultMaxLength; i++ {
		indices = append(indices, 0)
	}
	indices = append(indices, 3)
	d, err := m.Catalog.Resolve(indices)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	_, _, err = m.Reconstruct(context.Background(), d, generate.Options{})
	if !errors.Is(err, ErrDerivationTooLong) {
		t.Fatalf("expected ErrDerivationTooLong, got %v", err)
	}
}

func TestReconstruct_SeedReproducible(t *testing.T) {
	d, _ := grammar.Default().Resolve([]int{3, 7})
	run := func() []int {
		res, _, err := newModel(77).Reconstruct(context.Background(), d, generate.Options{Mode: selector.Stochastic})
		if err != nil {
			t.Fatalf("Reconstruct: %v", err)
		}
		return res.Rules
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("rule %d differs: %v vs %v", i, a, b)
		}
	}
}

func TestSampleLatentAndGenerate(t *testing.T) {
	m := newModel(4)
	z, err := m.SampleLatent(make([]float64, zDim), make([]float64, zDim))
	if err != nil {
		t.Fatalf("SampleLatent: %v", err)
	}
	res, err := m.Generate(context.Background(), z, generate.Options{MaxLength: 10})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Steps > 10 {
		t.Fatalf("steps %d exceed budget", res.Steps)
	}
}
