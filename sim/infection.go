package sim

import "math"

// infectionOutcome is the fate partition of this tick's miracidia stock.
type infectionOutcome struct {
	Free       int // remained free-living, returned to the pool
	Died       int
	Infections int // total infection events across all hosts
}

// applyInfection partitions the miracidia stock among competing fates with
// a single multinomial draw and adds the fixed biomass increment to each
// infected host. Class probabilities come from competing exponential
// hazards: a miracidium either stays free, encounters host i and succeeds
// with probability sigma, or dies (background death plus failed
// encounters).
//
// Class order is [free, infect_1..infect_N, died]; counts sum exactly to
// the stock consumed.
func (s *Simulation) applyInfection(snaps []agentSnapshot) infectionOutcome {
	t := &s.cfg.Transmission
	m := s.env.M
	if m == 0 {
		return infectionOutcome{}
	}

	// Per-host encounter rates; a host with no length is not truly alive
	// and encounters nothing.
	rates := make([]float64, len(snaps))
	sum := 0.0
	for i := range snaps {
		if snaps[i].State.L > 0 {
			rates[i] = t.Epsilon / t.Volume
			sum += rates[i]
		}
	}

	lambda := t.MDeath + sum
	if lambda <= 0 {
		// No competing hazards at all: the whole stock persists.
		return infectionOutcome{Free: m}
	}

	pFree := math.Exp(-lambda * t.Step)
	probs := make([]float64, len(snaps)+2)
	probs[0] = pFree
	for i, rate := range rates {
		probs[1+i] = (1 - pFree) * t.Sigma * rate / lambda
	}
	// Death absorbs background mortality and failed encounters; written as
	// the complement so the classes sum to one exactly.
	rest := probs[0]
	for _, p := range probs[1 : len(probs)-1] {
		rest += p
	}
	probs[len(probs)-1] = 1 - rest

	counts := s.multinomial(m, probs)

	total := 0
	for _, c := range counts {
		total += c
	}
	if total != m {
		panic("sim: infection partition did not consume the miracidia stock")
	}

	out := infectionOutcome{Free: counts[0], Died: counts[len(counts)-1]}
	for i := range snaps {
		c := counts[1+i]
		if c == 0 {
			continue
		}
		snaps[i].State.P += float64(c) * s.cfg.DEB.InfectionMass
		out.Infections += c
	}
	return out
}
