package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// #region root
var configPath string

var rootCmd = &cobra.Command{
	Use:   "grammarvae",
	Short: "Decode latent vectors into grammar derivations",
	Long: `grammarvae decodes latent vectors into derivations of a context-free
grammar. Every step masks the decoder's scores to the rules that expand the
leftmost pending nonterminal, so each output is syntactically valid by
construction (or truncated at the step budget).

Configuration comes from --config (YAML) overlaid with GVAE_* environment
variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config")
	rootCmd.AddCommand(generateCmd, grammarCmd, reconstructCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// #endregion root
