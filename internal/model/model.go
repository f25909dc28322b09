package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LuisCarretero/grammar-vae/internal/decoder"
	"github.com/LuisCarretero/grammar-vae/internal/generate"
	"github.com/LuisCarretero/grammar-vae/internal/grammar"
	"github.com/LuisCarretero/grammar-vae/internal/latent"
)

// ErrDerivationTooLong is returned when a derivation has more steps than the
// encoder input holds.
var ErrDerivationTooLong = errors.New("derivation longer than max length")

// #region model
// Model ties an encoder and decoder to a grammar catalog.
type Model struct {
	Catalog *grammar.Catalog
	Encoder decoder.Encoder
	Decoder decoder.Decoder
	Sampler *latent.Sampler

	gen *generate.Generator
}

// New builds a model. The sampler's random source is also used for
// stochastic rule selection in Reconstruct, so noise draws always precede
// rule draws on the same stream.
func New(c *grammar.Catalog, enc decoder.Encoder, dec decoder.Decoder, sampler *latent.Sampler, logger *slog.Logger) *Model {
	return &Model{
		Catalog: c,
		Encoder: enc,
		Decoder: dec,
		Sampler: sampler,
		gen:     generate.New(c, dec, logger),
	}
}

// ForwardResult carries the encoder statistics alongside the decoded scores.
type ForwardResult struct {
	Mu, Sigma []float64
	Z         []float64
	Scores    decoder.ScoreMatrix
	KL        float64
}

// Forward encodes x, samples z and decodes it into maxLength score rows.
func (m *Model) Forward(ctx context.Context, x [][]float64, maxLength int) (ForwardResult, error) {
	mu, sigma, err := m.Encoder.Encode(ctx, x)
	if err != nil {
		return ForwardResult{}, fmt.Errorf("encode: %w", err)
	}
	z, err := m.Sampler.Sample(mu, sigma)
	if err != nil {
		return ForwardResult{}, fmt.Errorf("sample: %w", err)
	}
	scores, err := m.Decoder.Decode(ctx, z, maxLength)
	if err != nil {
		return ForwardResult{}, fmt.Errorf("decode: %w", err)
	}
	kl, err := latent.KL(mu, sigma)
	if err != nil {
		return ForwardResult{}, fmt.Errorf("kl: %w", err)
	}
	return ForwardResult{Mu: mu, Sigma: sigma, Z: z, Scores: scores, KL: kl}, nil
}

// Generate decodes z into a derivation.
func (m *Model) Generate(ctx context.Context, z []float64, opts generate.Options) (generate.Result, error) {
	return m.gen.Generate(ctx, z, opts)
}

// SampleLatent draws z from N(mu, sigma) using the model's sampler.
func (m *Model) SampleLatent(mu, sigma []float64) ([]float64, error) {
	return m.Sampler.Sample(mu, sigma)
}

// Reconstruct encodes a derivation, samples a latent vector and decodes it
// back into a derivation. Stochastic selection, if requested, draws from the
// sampler's random source after the latent noise.
func (m *Model) Reconstruct(ctx context.Context, d grammar.Derivation, opts generate.Options) (generate.Result, []float64, error) {
	if opts.MaxLength <= 0 {
		opts.MaxLength = generate.DefaultMaxLength
	}
	if len(d) > opts.MaxLength {
		return generate.Result{}, nil, fmt.Errorf("%w: %d steps, max %d", ErrDerivationTooLong, len(d), opts.MaxLength)
	}
	indices, err := m.Catalog.Indices(d)
	if err != nil {
		return generate.Result{}, nil, err
	}
	x, err := m.Catalog.OneHot(indices, opts.MaxLength)
	if err != nil {
		return generate.Result{}, nil, err
	}
	mu, sigma, err := m.Encoder.Encode(ctx, x)
	if err != nil {
		return generate.Result{}, nil, fmt.Errorf("encode: %w", err)
	}
	z, err := m.Sampler.Sample(mu, sigma)
	if err != nil {
		return generate.Result{}, nil, fmt.Errorf("sample: %w", err)
	}
	if opts.Rand == nil {
		opts.Rand = m.Sampler.Rand
	}
	res, err := m.gen.Generate(ctx, z, opts)
	if err != nil {
		return generate.Result{}, nil, err
	}
	return res, z, nil
}

// #endregion model
