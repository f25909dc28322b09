package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/LuisCarretero/grammar-vae/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to grammarvae.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/grammarvae.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *runID != "" {
		err = runDetailMode(st, *runID, *jsonOut)
	} else {
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		st.Close()
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID      string `json:"run_id"`
	Mode       string `json:"mode"`
	Steps      int    `json:"steps"`
	MaxLength  int    `json:"max_length"`
	Truncated  bool   `json:"truncated"`
	Expression string `json:"expression,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:      r.RunID,
			Mode:       r.Mode,
			Steps:      r.Steps,
			MaxLength:  r.MaxLength,
			Truncated:  r.Truncated,
			Expression: r.Expression,
			CreatedAt:  r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-8s  %-10s  %9s  %-9s  %-20s  %s\n", "Run", "Mode", "Steps", "Truncated", "Time", "Expression")
	fmt.Printf("%-8s+-%-10s+-%9s+-%-9s+-%-20s+-%s\n",
		"--------", "----------", "---------", "---------", "--------------------", "----------")
	for _, r := range rows {
		fmt.Printf("%-8s  %-10s  %4d/%-4d  %-9v  %-20s  %s\n",
			shortID(r.RunID), r.Mode, r.Steps, r.MaxLength, r.Truncated, r.CreatedAt, r.Expression)
	}

	stats, err := st.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("\n%d runs total, %d truncated, %.2f avg steps\n", stats.Total, stats.Truncated, stats.AvgSteps)
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(st *store.Store, id string, jsonOut bool) error {
	rec, err := st.GetRun(id)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(rec)
	}
	fmt.Printf("Run:        %s\n", rec.RunID)
	fmt.Printf("Created:    %s\n", rec.CreatedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("Mode:       %s (seed %d)\n", rec.Mode, rec.Seed)
	fmt.Printf("Steps:      %d of %d\n", rec.Steps, rec.MaxLength)
	fmt.Printf("Truncated:  %v\n", rec.Truncated)
	fmt.Printf("Rules:      %s\n", joinInts(rec.Rules))
	if rec.Expression != "" {
		fmt.Printf("Expression: %s\n", rec.Expression)
	}
	if len(rec.Latent) > 0 {
		fmt.Printf("Latent:     %d dims, |z| = %.4f\n", len(rec.Latent), norm(rec.Latent))
	}
	return nil
}

// #endregion detail-mode

// #region helpers

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ",")
}

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

// #endregion helpers
