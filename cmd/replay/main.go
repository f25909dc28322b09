package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/LuisCarretero/grammar-vae/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	verbose := flag.Bool("v", false, "print replayed rules for every case")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [-v]")
		os.Exit(2)
	}
	os.Exit(run(*fixturePath, *verbose))
}

// #endregion main

// #region fixture-mode

func run(path string, verbose bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 1
	}
	results, err := replay.Replay(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 1
	}

	if f.Description != "" {
		fmt.Printf("%s\n\n", f.Description)
	}
	fmt.Printf("%-28s| %-6s| %-10s| %s\n", "Case", "Steps", "Outcome", "Match")
	fmt.Printf("%-28s+%-7s+%-11s+%s\n",
		strings.Repeat("-", 28), strings.Repeat("-", 7), strings.Repeat("-", 11), "------")
	for _, r := range results {
		outcome := "complete"
		switch {
		case r.ErrorKind != "":
			outcome = r.ErrorKind
		case r.Truncated:
			outcome = "truncated"
		}
		match := "OK"
		if !r.Passed {
			match = "FAIL: " + r.Reason
		}
		fmt.Printf("%-28s| %-6d| %-10s| %s\n", r.Name, r.Steps, outcome, match)
		if verbose {
			fmt.Printf("    rules=%v expression=%q\n", r.Rules, r.Expression)
		}
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d pass, %d fail (%d truncated, %d errors)\n",
		s.Total, s.Passed, s.Failed, s.Truncated, s.Errors)
	if s.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion fixture-mode
