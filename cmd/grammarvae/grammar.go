package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// #region grammar-cmd
var grammarMasks bool

var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Print the rule catalog and, optionally, every nonterminal's mask",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		c := a.model.Catalog
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "start: %s  rules: %d\n", c.Start(), c.Size())
		for i, r := range c.Productions() {
			fmt.Fprintf(out, "%4d  %s\n", i, r)
		}
		if !grammarMasks {
			return nil
		}
		fmt.Fprintln(out)
		for _, nt := range c.Nonterminals() {
			m := c.Mask(nt)
			bits := make([]string, len(m))
			for i, v := range m {
				bits[i] = fmt.Sprintf("%.0f", v)
			}
			fmt.Fprintf(out, "mask(%s) = [%s]\n", nt, strings.Join(bits, " "))
		}
		return nil
	},
}

func init() {
	grammarCmd.Flags().BoolVar(&grammarMasks, "masks", false, "also print the mask of every nonterminal")
}

// #endregion grammar-cmd
