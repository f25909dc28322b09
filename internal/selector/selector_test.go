package selector

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// #region probabilities-tests
func TestProbabilities_MaskedEntriesExactlyZero(t *testing.T) {
	scores := []float64{3, 1, 2, 0.5}
	mask := []float64{0, 1, 1, 0}

	probs, err := Probabilities(scores, mask)
	if err != nil {
		t.Fatalf("Probabilities: %v", err)
	}
	if probs[0] != 0 || probs[3] != 0 {
		t.Fatalf("masked entries must be 0, got %v", probs)
	}
	sum := probs[1] + probs[2]
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("expected normalized distribution, sum=%v", sum)
	}
	want := math.Exp(2) / (math.Exp(1) + math.Exp(2))
	if math.Abs(probs[2]-want) > 1e-12 {
		t.Fatalf("expected p[2]=%v, got %v", want, probs[2])
	}
}

func TestProbabilities_LargeScoresDoNotOverflow(t *testing.T) {
	probs, err := Probabilities([]float64{1000, 999}, []float64{1, 1})
	if err != nil {
		t.Fatalf("Probabilities: %v", err)
	}
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("p[%d] not finite: %v", i, p)
		}
	}
	if probs[0] <= probs[1] {
		t.Fatalf("expected p[0] > p[1], got %v", probs)
	}
}

func TestProbabilities_Errors(t *testing.T) {
	if _, err := Probabilities([]float64{1, 2}, []float64{0, 0}); !errors.Is(err, ErrInvalidMask) {
		t.Errorf("all-zero mask: expected ErrInvalidMask, got %v", err)
	}
	if _, err := Probabilities([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrLength) {
		t.Errorf("length mismatch: expected ErrLength, got %v", err)
	}
	if _, err := Probabilities([]float64{math.Inf(-1), 2}, []float64{1, 0}); !errors.Is(err, ErrInvalidMask) {
		t.Errorf("-inf scores: expected ErrInvalidMask, got %v", err)
	}
	if _, err := Probabilities([]float64{math.NaN(), 2}, []float64{1, 0}); !errors.Is(err, ErrInvalidMask) {
		t.Errorf("NaN scores: expected ErrInvalidMask, got %v", err)
	}
}

// #endregion probabilities-tests

// #region select-tests
func TestSelect_GreedyTieBreaksLowestIndex(t *testing.T) {
	scores := []float64{5, 2, 2, 2}
	mask := []float64{0, 1, 1, 1}
	for i := 0; i < 10; i++ {
		got, err := Select(scores, mask, Greedy, nil)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if got != 1 {
			t.Fatalf("expected index 1, got %d", got)
		}
	}
}

func TestSelect_GreedyIgnoresMaskedMaximum(t *testing.T) {
	got, err := Select([]float64{10, 0, 1}, []float64{0, 1, 1}, Greedy, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestSelect_StochasticRespectsMask(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	scores := []float64{50, 0, 0, 50}
	mask := []float64{0, 1, 1, 0}
	counts := map[int]int{}
	for i := 0; i < 500; i++ {
		got, err := Select(scores, mask, Stochastic, rng)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		counts[got]++
	}
	if counts[0] != 0 || counts[3] != 0 {
		t.Fatalf("masked rules were selected: %v", counts)
	}
	if counts[1] == 0 || counts[2] == 0 {
		t.Fatalf("expected both valid rules to be drawn: %v", counts)
	}
}

func TestSelect_StochasticSeedReproducible(t *testing.T) {
	scores := []float64{0.1, 0.2, 0.3, 0.4}
	mask := []float64{1, 1, 1, 1}
	draw := func() []int {
		rng := rand.New(rand.NewSource(99))
		out := make([]int, 20)
		for i := range out {
			out[i], _ = Select(scores, mask, Stochastic, rng)
		}
		return out
	}
	a, b := draw(), draw()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d differs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestSelect_StochasticNeedsRand(t *testing.T) {
	if _, err := Select([]float64{1}, []float64{1}, Stochastic, nil); err == nil {
		t.Fatal("expected error without random source")
	}
}

func TestSample_SkipsZeroEntries(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	probs := []float64{0, 1, 0}
	for i := 0; i < 50; i++ {
		if got := Sample(probs, rng); got != 1 {
			t.Fatalf("expected 1, got %d", got)
		}
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"greedy": Greedy, "ARGMAX": Greedy, "sample": Stochastic, "stochastic": Stochastic}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("beam"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

// #endregion select-tests
