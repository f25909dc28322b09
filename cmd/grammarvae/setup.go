package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/LuisCarretero/grammar-vae/internal/config"
	"github.com/LuisCarretero/grammar-vae/internal/decoder"
	"github.com/LuisCarretero/grammar-vae/internal/grammar"
	"github.com/LuisCarretero/grammar-vae/internal/latent"
	"github.com/LuisCarretero/grammar-vae/internal/logging"
	"github.com/LuisCarretero/grammar-vae/internal/model"
)

// #region app
// app bundles what every subcommand needs.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	model  *model.Model
	rng    *rand.Rand
	closer io.Closer
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	catalog := grammar.Default()
	if cfg.GrammarPath != "" {
		if catalog, err = grammar.LoadFile(cfg.GrammarPath); err != nil {
			return nil, err
		}
	}

	param, err := latent.ParseParameterization(cfg.Parameterization)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	sampler := latent.NewSampler(rng, param)
	encoder := decoder.NewAffineEncoder(cfg.MaxLength, catalog.Size(), cfg.ZDim, cfg.Seed+1, 0.1)

	a := &app{cfg: cfg, logger: logger, rng: rng}
	var dec decoder.Decoder
	if cfg.DecoderAddr != "" {
		remote, err := decoder.NewRemote(cfg.DecoderAddr)
		if err != nil {
			return nil, err
		}
		a.closer = remote
		dec = remote
		logger.Info("using remote decoder", slog.String("addr", cfg.DecoderAddr))
	} else {
		dec = decoder.NewAffine(cfg.ZDim, catalog.Size(), cfg.MaxLength, cfg.Seed, 1.0)
		logger.Debug("using local affine decoder", slog.Int("z_dim", cfg.ZDim))
	}

	a.model = model.New(catalog, encoder, dec, sampler, logger)
	return a, nil
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// #endregion app

// #region helpers
func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// #endregion helpers
