package sim

import (
	"math"
	"testing"

	"github.com/pthm-cable/pond/config"
)

func windowCfg(density, min, max float64) *config.PredationConfig {
	return &config.PredationConfig{
		Density: density, Attack: 0.05, Handling: 0.1,
		Policy: config.PolicyWindow, GapeMin: min, GapeMax: max,
	}
}

func gradientCfg(density, slope float64) *config.PredationConfig {
	return &config.PredationConfig{
		Density: density, Attack: 0.05, Handling: 0.1,
		Policy: config.PolicyGradient, Slope: slope,
	}
}

func TestNoPredatorsNoHazard(t *testing.T) {
	shells := []float64{0.5, 2, 5, 10, 25}
	for _, shell := range shells {
		if h := predationHazard(windowCfg(0, 0, 0), 100, shell); h != 0 {
			t.Errorf("window: shell %g got hazard %g with no predators", shell, h)
		}
		if h := predationHazard(gradientCfg(0, 0.12), 100, shell); h != 0 {
			t.Errorf("gradient: shell %g got hazard %g with no predators", shell, h)
		}
	}
}

func TestWindowPolicyEdges(t *testing.T) {
	p := windowCfg(2, 2, 10)
	base := p.Attack * p.Density / (1 + p.Attack*p.Handling*50)

	cases := []struct {
		shell float64
		want  float64
	}{
		{1.99, 0},
		{2.0, base},  // inclusive lower edge
		{5.0, base},
		{10.0, base}, // inclusive upper edge
		{10.01, 0},
	}
	for _, tc := range cases {
		if got := predationHazard(p, 50, tc.shell); math.Abs(got-tc.want) > 1e-15 {
			t.Errorf("shell %g: hazard %g, want %g", tc.shell, got, tc.want)
		}
	}
}

func TestWindowUnboundedUpperGape(t *testing.T) {
	p := windowCfg(2, 0, 0) // gape_max <= 0 means unbounded
	if got := predationHazard(p, 10, 1e6); got == 0 {
		t.Error("unbounded window should cover arbitrarily large shells")
	}
}

func TestGradientDecaysWithLength(t *testing.T) {
	p := gradientCfg(2, 0.12)

	prev := math.Inf(1)
	for _, shell := range []float64{1, 2, 4, 8, 16} {
		h := predationHazard(p, 50, shell)
		if h <= 0 {
			t.Fatalf("shell %g: expected positive hazard", shell)
		}
		if h >= prev {
			t.Fatalf("shell %g: hazard %g did not decay (prev %g)", shell, h, prev)
		}
		prev = h
	}
}

func TestGradientNegativeSlopeGrowsWithLength(t *testing.T) {
	p := gradientCfg(2, -0.12)

	small := predationHazard(p, 50, 2)
	large := predationHazard(p, 50, 8)
	if large <= small {
		t.Errorf("negative slope should favor large prey: %g vs %g", large, small)
	}
}

func TestTypeIIResponseSaturatesWithDensity(t *testing.T) {
	// More prey dilutes per-capita risk through handling time.
	p := windowCfg(2, 0, 0)

	prev := math.Inf(1)
	for _, n := range []int{1, 10, 100, 1000} {
		h := predationHazard(p, n, 5)
		if h >= prev {
			t.Fatalf("N=%d: hazard %g did not decrease with prey density (prev %g)", n, h, prev)
		}
		prev = h
	}

	// Without handling time the response is density-independent.
	p.Handling = 0
	if a, b := predationHazard(p, 1, 5), predationHazard(p, 1000, 5); a != b {
		t.Errorf("zero handling time should remove density dependence: %g vs %g", a, b)
	}
}
