// Package components defines ECS components for one host snail.
//
// Splitting the record across small components keeps the agent table's
// column set fixed by type: a query over 0, 1, or N entities always yields
// the same schema.
package components

// Identity carries the host's unique ID and creation tick.
// IDs increase monotonically over a run and are never reused.
type Identity struct {
	ID   uint32
	Born int32
}

// Physiology holds the DEB state variables advanced by the integrator.
type Physiology struct {
	L   float64 // structural length (mm)
	E   float64 // scaled reserve density
	D   float64 // maturity investment (mg)
	RH  float64 // host reproduction buffer (mg egg mass)
	DAM float64 // cumulative damage
}

// Infection holds within-host parasite state.
type Infection struct {
	P  float64 // parasite biomass (mg)
	RP float64 // cercarial buffer (mg)
}

// Budget holds per-tick bookkeeping recomputed every day.
type Budget struct {
	Haz     float64 // hazard integrated over this tick, consumed by the survival draw
	Shell   float64 // realized shell length (mm); drives size-selective predation
	DEBMass float64 // structure + reserve mass (mg), derived each tick
	AppMass float64 // apparent (shell allometry) mass (mg), derived each tick
	Food    float64 // food ingested this tick (mg)
	Repro   int     // eggs released this tick
	Cercs   int     // cercariae released this tick
	Tick    int32   // tick of last update
}
