package deb

import (
	"math"

	"github.com/pthm-cable/pond/config"
)

// RK4 is the default integrator: classic fourth-order Runge-Kutta with a
// fixed number of substeps per tick. It carries no per-host state and is
// safe to share across workers.
type RK4 struct {
	Substeps int
}

// NewRK4 returns an RK4 integrator with the default substep count.
func NewRK4() *RK4 {
	return &RK4{Substeps: 10}
}

// Step advances s by dt days at constant food and baseline hazard.
func (r *RK4) Step(s State, food, hazard float64, p *config.DEBConfig, dt float64) Result {
	n := r.Substeps
	if n < 1 {
		n = 1
	}
	h := dt / float64(n)

	var eaten float64
	for i := 0; i < n; i++ {
		k1, f1 := derivs(s, food, hazard, p)
		k2, f2 := derivs(add(s, k1, h/2), food, hazard, p)
		k3, f3 := derivs(add(s, k2, h/2), food, hazard, p)
		k4, f4 := derivs(add(s, k3, h), food, hazard, p)

		s = combine(s, k1, k2, k3, k4, h)
		eaten += h / 6 * (f1 + 2*f2 + 2*f3 + f4)
		s.clampFloors()
	}

	return Result{
		State:    s,
		Survival: math.Exp(-s.HAZ),
		Length:   s.Shell,
		Food:     eaten,
	}
}

// derivs evaluates the right-hand side at state s. The second return value
// is the instantaneous ingestion rate (mg/d), integrated separately so the
// engine can conserve resource mass.
func derivs(s State, food, hazard float64, p *config.DEBConfig) (State, float64) {
	var d State

	// Scaled functional response and surface-bound ingestion.
	f := 0.0
	if food > 0 {
		f = food / (p.Fh + food)
	}
	ingest := p.IMax * f * s.L * s.L

	// Reserve dynamics, with the parasite drawing down host reserve.
	vol := s.L * s.L * s.L
	drain := 0.0
	if s.P > 0 && vol > 0 {
		drain = p.AlphaP * s.P * s.E / (p.EM * vol)
	}
	if s.L > 0 {
		d.E = p.Nu*(f-s.E)/s.L - drain
	}

	// von Bertalanffy growth from scaled reserve.
	if s.L > 0 {
		d.L = (p.Nu / 3) * (s.E - s.L/p.Lm) / (s.E + p.G)
	}

	// Maturity first, then reproduction; infection castrates the host by
	// suppressing the reproduction flux.
	flux := p.KRep * s.E * vol
	if s.D < p.DR {
		d.D = flux
	} else {
		d.RH = flux * math.Exp(-p.Chi*s.P)
	}

	// Parasite intake splits between growth and the cercarial buffer.
	if s.P > 0 {
		intake := p.AlphaP * s.P * s.E
		d.P = (1-p.KapC)*intake - p.MP*s.P
		d.RP = p.KapC * intake
	}

	// Damage accrues with parasite load and is repaired at a fixed rate.
	d.DAM = p.Theta*s.P - p.KDam*s.DAM

	// Hazard: background + predation baseline + damage + starvation.
	haz := p.HB + hazard + p.HDam*s.DAM
	if s.E < p.EStarve {
		haz += p.HStarve * (p.EStarve - s.E)
	}
	d.HAZ = haz

	// Shell tracks structural length with a lag and never shrinks.
	if growth := p.Beta * (p.DeltaM*s.L - s.Shell); growth > 0 {
		d.Shell = growth
	}

	return d, ingest
}

// clampFloors enforces the non-negativity invariants after each substep.
func (s *State) clampFloors() {
	if s.L < 0 {
		s.L = 0
	}
	if s.E < 0 {
		s.E = 0
	}
	if s.D < 0 {
		s.D = 0
	}
	if s.RH < 0 {
		s.RH = 0
	}
	if s.P < 0 {
		s.P = 0
	}
	if s.RP < 0 {
		s.RP = 0
	}
	if s.DAM < 0 {
		s.DAM = 0
	}
	if s.Shell < 0 {
		s.Shell = 0
	}
}

func add(s, k State, h float64) State {
	return State{
		L:     s.L + h*k.L,
		E:     s.E + h*k.E,
		D:     s.D + h*k.D,
		RH:    s.RH + h*k.RH,
		P:     s.P + h*k.P,
		RP:    s.RP + h*k.RP,
		DAM:   s.DAM + h*k.DAM,
		HAZ:   s.HAZ + h*k.HAZ,
		Shell: s.Shell + h*k.Shell,
	}
}

func combine(s, k1, k2, k3, k4 State, h float64) State {
	w := func(a, b, c, d float64) float64 { return h / 6 * (a + 2*b + 2*c + d) }
	return State{
		L:     s.L + w(k1.L, k2.L, k3.L, k4.L),
		E:     s.E + w(k1.E, k2.E, k3.E, k4.E),
		D:     s.D + w(k1.D, k2.D, k3.D, k4.D),
		RH:    s.RH + w(k1.RH, k2.RH, k3.RH, k4.RH),
		P:     s.P + w(k1.P, k2.P, k3.P, k4.P),
		RP:    s.RP + w(k1.RP, k2.RP, k3.RP, k4.RP),
		DAM:   s.DAM + w(k1.DAM, k2.DAM, k3.DAM, k4.DAM),
		HAZ:   s.HAZ + w(k1.HAZ, k2.HAZ, k3.HAZ, k4.HAZ),
		Shell: s.Shell + w(k1.Shell, k2.Shell, k3.Shell, k4.Shell),
	}
}
