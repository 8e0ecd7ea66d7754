// Package deb provides the host physiology integrator: a Dynamic Energy
// Budget model with within-host parasite growth, damage, and hazard
// accumulation, advanced one tick at a time.
//
// The simulation engine depends only on the Integrator contract; the
// concrete right-hand side lives behind it and can be swapped out.
package deb

import "github.com/pthm-cable/pond/config"

// State is the physiological state of one host, in the integrator's frame.
// HAZ starts each tick at zero and accumulates hazard over the step.
type State struct {
	L     float64 // structural length (mm)
	E     float64 // scaled reserve density
	D     float64 // maturity investment (mg)
	RH    float64 // host reproduction buffer (mg)
	P     float64 // parasite biomass (mg)
	RP    float64 // cercarial buffer (mg)
	DAM   float64 // cumulative damage
	HAZ   float64 // hazard accumulated this tick (1/d integrated)
	Shell float64 // realized shell length (mm)
}

// Result is the outcome of advancing one host by one tick.
type Result struct {
	State    State   // state at the end of the step
	Survival float64 // exp(-HAZ) over the step
	Length   float64 // grown shell length (mm), convenience copy of State.Shell
	Food     float64 // food mass ingested over the step (mg)
}

// Integrator advances one host's state by dt days under the given food
// density and baseline (predation) hazard rate. Implementations must be
// safe for concurrent use: hosts are integrated in parallel within a tick.
type Integrator interface {
	Step(s State, food, hazard float64, p *config.DEBConfig, dt float64) Result
}
