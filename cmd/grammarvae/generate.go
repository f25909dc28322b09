package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/LuisCarretero/grammar-vae/internal/generate"
	"github.com/LuisCarretero/grammar-vae/internal/grammar"
	"github.com/LuisCarretero/grammar-vae/internal/selector"
	"github.com/LuisCarretero/grammar-vae/internal/store"
)

// #region generate-cmd
var (
	genCount       int
	genLatent      string
	genMode        string
	genMaxLength   int
	genSave        bool
	genJSON        bool
	genShowMetrics bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Decode latent vectors into derivations",
	Long: `Draws latent vectors from the standard-normal prior (or uses --latent)
and decodes each into a derivation.

Examples:
  grammarvae generate --count 5
  grammarvae generate --mode stochastic --max-length 10 --save
  grammarvae generate --latent 0.1,0.2,-0.3 --json`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&genCount, "count", "n", 1, "number of derivations")
	generateCmd.Flags().StringVar(&genLatent, "latent", "", "comma-separated latent vector (skips prior sampling)")
	generateCmd.Flags().StringVar(&genMode, "mode", "", "greedy or stochastic (overrides config)")
	generateCmd.Flags().IntVar(&genMaxLength, "max-length", 0, "step budget, at most the configured max_length")
	generateCmd.Flags().BoolVar(&genSave, "save", false, "store runs in the configured SQLite database")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "output as JSON lines")
	generateCmd.Flags().BoolVar(&genShowMetrics, "metrics", false, "print generation counters when done")
}

// #endregion generate-cmd

// #region run-generate
type generateRow struct {
	RunID      string    `json:"run_id,omitempty"`
	Rules      []int     `json:"rules"`
	Derivation []string  `json:"derivation"`
	Expression string    `json:"expression"`
	Steps      int       `json:"steps"`
	Truncated  bool      `json:"truncated"`
	Pending    []string  `json:"pending,omitempty"`
	Latent     []float64 `json:"latent,omitempty"`
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	modeName := a.cfg.Mode
	if genMode != "" {
		modeName = genMode
	}
	mode, err := selector.ParseMode(modeName)
	if err != nil {
		return err
	}
	maxLength := a.cfg.MaxLength
	if genMaxLength > 0 {
		if genMaxLength > a.cfg.MaxLength {
			return fmt.Errorf("--max-length %d exceeds configured max_length %d", genMaxLength, a.cfg.MaxLength)
		}
		maxLength = genMaxLength
	}

	var fixed []float64
	if genLatent != "" {
		if fixed, err = parseFloats(genLatent); err != nil {
			return fmt.Errorf("--latent: %w", err)
		}
		if len(fixed) != a.cfg.ZDim {
			return fmt.Errorf("--latent has %d values, z_dim is %d", len(fixed), a.cfg.ZDim)
		}
	}

	var st *store.Store
	if genSave {
		if st, err = store.NewStore(a.cfg.DBPath); err != nil {
			return err
		}
		defer st.Close()
	}

	catalog := a.model.Catalog
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	for i := 0; i < genCount; i++ {
		z := fixed
		if z == nil {
			z = a.model.Sampler.Prior(a.cfg.ZDim)
		}
		res, err := a.model.Generate(cmd.Context(), z, generate.Options{
			Mode:      mode,
			MaxLength: maxLength,
			Rand:      a.rng,
		})
		if err != nil {
			return fmt.Errorf("generation %d: %w", i+1, err)
		}

		row := generateRow{
			Rules:     res.Rules,
			Steps:     res.Steps,
			Truncated: res.Truncated,
			Pending:   res.Pending,
			Latent:    z,
		}
		for _, r := range res.Derivation {
			row.Derivation = append(row.Derivation, r.String())
		}
		if form, _, err := grammar.Yield(catalog.Start(), res.Derivation); err == nil {
			row.Expression = grammar.Render(form)
		}

		if st != nil {
			rec, err := st.SaveRun(store.RunRecord{
				Mode:       mode.String(),
				MaxLength:  maxLength,
				Seed:       a.cfg.Seed,
				Latent:     z,
				Rules:      res.Rules,
				Steps:      res.Steps,
				Truncated:  res.Truncated,
				Expression: completeExpression(row),
			})
			if err != nil {
				return err
			}
			row.RunID = rec.RunID
			a.logger.Debug("saved run", slog.String("run_id", rec.RunID))
		}

		if genJSON {
			if err := enc.Encode(row); err != nil {
				return err
			}
			continue
		}
		status := "complete"
		if row.Truncated {
			status = fmt.Sprintf("truncated, pending %s", strings.Join(row.Pending, " "))
		}
		fmt.Fprintf(out, "[%d] %s  (%d steps, %s)\n", i+1, row.Expression, row.Steps, status)
		for _, d := range row.Derivation {
			fmt.Fprintf(out, "      %s\n", d)
		}
	}

	if genShowMetrics {
		printMetrics()
	}
	return nil
}

func completeExpression(row generateRow) string {
	if row.Truncated {
		return ""
	}
	return row.Expression
}

func printMetrics() {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gather metrics: %v\n", err)
		return
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "grammarvae_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(os.Stderr, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(os.Stderr, "%s count=%d sum=%g\n", mf.GetName(), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}

// #endregion run-generate
