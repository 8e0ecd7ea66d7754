package sim

import (
	"math"

	"github.com/pthm-cable/pond/config"
)

// updateEnvironment mutates the shared pools from this tick's aggregated
// host outputs. Runs strictly after all per-host computation.
func (s *Simulation) updateEnvironment(totals tickTotals, infection infectionOutcome) {
	t := &s.cfg.Transmission

	s.env.F = s.resourceNext(s.env.F, totals.FoodEaten)
	s.env.M = infection.Free + s.miracidiaInput()
	s.env.Z = s.env.Z*math.Exp(-t.ZDeath*t.Step) + float64(totals.CercsShed)/t.Volume
	s.env.G = totals.EggsLaid
}

// updateEnvironmentEmpty advances the pools with no host contribution:
// closed-form decay and growth only.
func (s *Simulation) updateEnvironmentEmpty() {
	t := &s.cfg.Transmission

	s.env.F = s.resourceNext(s.env.F, 0)
	decayed := math.Floor(float64(s.env.M)*math.Exp(-t.MDeath*t.Step) + 0.5)
	s.env.M = int(decayed) + s.miracidiaInput()
	s.env.Z *= math.Exp(-t.ZDeath * t.Step)
	s.env.G = 0
}

// resourceNext applies one tick of resource dynamics: logistic regrowth or
// scheduled detrital input, minus grazing diluted by the volume.
func (s *Simulation) resourceNext(f, eaten float64) float64 {
	r := &s.cfg.Resource
	t := &s.cfg.Transmission

	switch r.Mode {
	case config.ResourceLogistic:
		f += r.R * f * (1 - f/r.K) * t.Step
	case config.ResourceDetritus:
		// An empty schedule means continuous input.
		if len(r.DetOnTicks) == 0 || tickIn(r.DetOnTicks, s.tick) {
			f += r.Det
		}
	}

	f -= eaten / t.Volume
	if f < 0 {
		f = 0
	}
	return f
}

// miracidiaInput returns the scheduled miracidia introduction for this
// tick. An empty schedule means no input.
func (s *Simulation) miracidiaInput() int {
	r := &s.cfg.Resource
	if tickIn(r.MiracidiaOnTicks, s.tick) {
		return r.MiracidiaInput
	}
	return 0
}

func tickIn(ticks []int, tick int32) bool {
	for _, t := range ticks {
		if int32(t) == tick {
			return true
		}
	}
	return false
}
