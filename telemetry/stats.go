package telemetry

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// Summary is a replicate-level aggregate: mean with a normal-approximation
// 95% confidence interval.
type Summary struct {
	N    int
	Mean float64
	Lo   float64
	Hi   float64
}

// Summarize aggregates one endpoint across replicate runs.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	mean := stat.Mean(values, nil)
	if n == 1 {
		return Summary{N: 1, Mean: mean, Lo: mean, Hi: mean}
	}

	sd := stat.StdDev(values, nil)
	half := 1.96 * sd / math.Sqrt(float64(n))
	return Summary{N: n, Mean: mean, Lo: mean - half, Hi: mean + half}
}

// Catch simulates a size-selective sampling pass over one tick's agent
// table: hosts at or above minShell are caught independently with the given
// probability. Mirrors a field dip-net sample; purely a post-processing
// helper over the output contract.
func Catch(rows []AgentRow, minShell, probability float64, rng *rand.Rand) []AgentRow {
	caught := make([]AgentRow, 0, len(rows))
	for _, row := range rows {
		if row.Shell < minShell {
			continue
		}
		if rng.Float64() < probability {
			caught = append(caught, row)
		}
	}
	return caught
}

// Percentile returns the p-th percentile (p in [0,1]) of a sorted slice
// with linear interpolation. Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ShellPercentiles reports the 10th, 50th, and 90th shell-length
// percentiles of one tick's table.
func ShellPercentiles(rows []AgentRow) (p10, p50, p90 float64) {
	if len(rows) == 0 {
		return 0, 0, 0
	}
	shells := make([]float64, len(rows))
	for i, row := range rows {
		shells[i] = row.Shell
	}
	sort.Float64s(shells)
	return Percentile(shells, 0.1), Percentile(shells, 0.5), Percentile(shells, 0.9)
}
