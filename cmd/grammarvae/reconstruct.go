package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LuisCarretero/grammar-vae/internal/generate"
	"github.com/LuisCarretero/grammar-vae/internal/grammar"
	"github.com/LuisCarretero/grammar-vae/internal/selector"
)

// #region reconstruct-cmd
var reconstructRules string

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Encode a derivation (as rule indices), sample z and decode it again",
	Example: `  grammarvae reconstruct --rules 0,3,7,8`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		indices, err := parseInts(reconstructRules)
		if err != nil {
			return fmt.Errorf("--rules: %w", err)
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		c := a.model.Catalog
		d, err := c.Resolve(indices)
		if err != nil {
			return err
		}
		in, complete, err := grammar.Yield(c.Start(), d)
		if err != nil {
			return err
		}
		mode, err := selector.ParseMode(a.cfg.Mode)
		if err != nil {
			return err
		}

		res, _, err := a.model.Reconstruct(cmd.Context(), d, generate.Options{Mode: mode, MaxLength: a.cfg.MaxLength})
		if err != nil {
			return err
		}
		outForm, _, err := grammar.Yield(c.Start(), res.Derivation)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "input:  %s (complete=%v)\n", grammar.Render(in), complete)
		fmt.Fprintf(out, "output: %s (steps=%d truncated=%v)\n", grammar.Render(outForm), res.Steps, res.Truncated)
		return nil
	},
}

func init() {
	reconstructCmd.Flags().StringVar(&reconstructRules, "rules", "", "comma-separated rule indices of the input derivation")
	reconstructCmd.MarkFlagRequired("rules")
}

// #endregion reconstruct-cmd
