package telemetry

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func TestSummarize(t *testing.T) {
	if s := Summarize(nil); s.N != 0 || s.Mean != 0 {
		t.Errorf("empty input should give a zero summary, got %+v", s)
	}

	s := Summarize([]float64{4.2})
	if s.N != 1 || s.Mean != 4.2 || s.Lo != 4.2 || s.Hi != 4.2 {
		t.Errorf("single value should collapse the interval, got %+v", s)
	}

	s = Summarize([]float64{1, 2, 3, 4, 5})
	if s.N != 5 || math.Abs(s.Mean-3) > 1e-12 {
		t.Errorf("mean = %g, want 3", s.Mean)
	}
	// sd = sqrt(2.5), half-width = 1.96*sd/sqrt(5)
	half := 1.96 * math.Sqrt(2.5) / math.Sqrt(5)
	if math.Abs(s.Hi-s.Lo-2*half) > 1e-12 {
		t.Errorf("interval width %g, want %g", s.Hi-s.Lo, 2*half)
	}
	if s.Lo > s.Mean || s.Hi < s.Mean {
		t.Errorf("interval [%g, %g] must bracket the mean %g", s.Lo, s.Hi, s.Mean)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	cases := []struct {
		p    float64
		want float64
	}{
		{-0.1, 10},
		{0, 10},
		{0.25, 20},
		{0.5, 30},
		{0.625, 35}, // interpolates between 30 and 40
		{1, 50},
		{1.5, 50},
	}
	for _, tc := range cases {
		if got := Percentile(sorted, tc.p); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Percentile(p=%g) = %g, want %g", tc.p, got, tc.want)
		}
	}

	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("empty slice should give 0, got %g", got)
	}
	if got := Percentile([]float64{7}, 0.5); got != 7 {
		t.Errorf("single element should give itself, got %g", got)
	}
}

func TestShellPercentiles(t *testing.T) {
	p10, p50, p90 := ShellPercentiles(nil)
	if p10 != 0 || p50 != 0 || p90 != 0 {
		t.Errorf("empty table should give zeros, got %g/%g/%g", p10, p50, p90)
	}

	rows := make([]AgentRow, 0, 11)
	for shell := 2.0; shell <= 12.0; shell++ {
		rows = append(rows, AgentRow{Shell: shell})
	}
	p10, p50, p90 = ShellPercentiles(rows)
	if math.Abs(p50-7) > 1e-12 {
		t.Errorf("median = %g, want 7", p50)
	}
	if p10 >= p50 || p50 >= p90 {
		t.Errorf("percentiles out of order: %g/%g/%g", p10, p50, p90)
	}
}

func TestCatch(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	rows := []AgentRow{
		{ID: 1, Shell: 1},
		{ID: 2, Shell: 4},
		{ID: 3, Shell: 8},
		{ID: 4, Shell: 12},
	}

	caught := Catch(rows, 3, 1, rng)
	if len(caught) != 3 {
		t.Fatalf("probability 1 should catch every host above the cutoff, got %d", len(caught))
	}
	for _, row := range caught {
		if row.Shell < 3 {
			t.Errorf("host %d below the cutoff was caught (shell %g)", row.ID, row.Shell)
		}
	}

	if got := Catch(rows, 3, 0, rng); len(got) != 0 {
		t.Errorf("probability 0 should catch nothing, got %d", len(got))
	}

	// Partial probability lands between the extremes over many passes.
	total := 0
	const passes = 2000
	for i := 0; i < passes; i++ {
		total += len(Catch(rows, 0, 0.5, rng))
	}
	mean := float64(total) / passes
	if mean < 1.7 || mean > 2.3 {
		t.Errorf("mean catch %g, want near 2 of 4", mean)
	}
}
