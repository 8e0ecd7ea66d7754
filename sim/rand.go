package sim

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// multinomial draws class counts for n trials over the given probabilities
// by chaining conditional binomial draws. The counts always sum to n; any
// probability mass lost to rounding lands in the final class.
func (s *Simulation) multinomial(n int, probs []float64) []int {
	counts := make([]int, len(probs))
	if n <= 0 || len(probs) == 0 {
		return counts
	}

	remaining := n
	rest := 1.0
	for k := 0; k < len(probs)-1 && remaining > 0; k++ {
		p := probs[k]
		if p <= 0 {
			continue
		}
		cond := p / rest
		var c int
		if cond >= 1 {
			c = remaining
		} else {
			c = s.binomial(remaining, cond)
		}
		counts[k] = c
		remaining -= c
		rest -= p
		if rest <= 0 {
			break
		}
	}
	counts[len(counts)-1] += remaining
	return counts
}

// binomial draws from Binomial(n, p) on the simulation's stream.
func (s *Simulation) binomial(n int, p float64) int {
	if n <= 0 || p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}
	b := distuv.Binomial{N: float64(n), P: p, Src: s.rng}
	return int(b.Rand())
}
