package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// #region config
// Config holds everything the binaries need to build a generator.
type Config struct {
	// GrammarPath is a YAML grammar file; empty selects the embedded grammar.
	GrammarPath string `yaml:"grammar_path"`
	DBPath      string `yaml:"db_path"`
	// DecoderAddr is a gRPC address; empty selects the local affine decoder.
	DecoderAddr      string `yaml:"decoder_addr" validate:"omitempty,hostname_port"`
	ZDim             int    `yaml:"z_dim" validate:"min=1,max=4096"`
	MaxLength        int    `yaml:"max_length" validate:"min=1,max=10000"`
	Mode             string `yaml:"mode" validate:"oneof=greedy stochastic"`
	Parameterization string `yaml:"parameterization" validate:"oneof=log_variance sqrt_variance"`
	Seed             int64  `yaml:"seed"`
	LogLevel         string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat        string `yaml:"log_format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:           "grammarvae.db",
		ZDim:             56,
		MaxLength:        15,
		Mode:             "greedy",
		Parameterization: "log_variance",
		Seed:             1,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// #endregion config

// #region load
// Load starts from Default, overlays the YAML file at path (if non-empty),
// then GVAE_* environment variables, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s=%v fails %q", fe.Field(), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// #endregion load

// #region env
func applyEnv(c *Config) error {
	c.GrammarPath = envOr("GVAE_GRAMMAR", c.GrammarPath)
	c.DBPath = envOr("GVAE_DB", c.DBPath)
	c.DecoderAddr = envOr("GVAE_DECODER_ADDR", c.DecoderAddr)
	c.Mode = envOr("GVAE_MODE", c.Mode)
	c.Parameterization = envOr("GVAE_PARAMETERIZATION", c.Parameterization)
	c.LogLevel = envOr("GVAE_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("GVAE_LOG_FORMAT", c.LogFormat)

	var err error
	if c.ZDim, err = envInt("GVAE_Z_DIM", c.ZDim); err != nil {
		return err
	}
	if c.MaxLength, err = envInt("GVAE_MAX_LENGTH", c.MaxLength); err != nil {
		return err
	}
	if v := os.Getenv("GVAE_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GVAE_SEED: %w", err)
		}
		c.Seed = seed
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// #endregion env
