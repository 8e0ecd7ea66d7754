package sim

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pond/deb"
	"github.com/pthm-cable/pond/telemetry"
)

// tickTotals aggregates per-host outputs for the environment update.
type tickTotals struct {
	FoodEaten float64
	EggsLaid  int
	CercsShed int
	Deaths    int
	Infected  int // hosts carrying parasite biomass after the update
}

// Step advances the simulation by one daily tick. Order is fixed: exposure,
// predation hazard, physiology, releases, survival, environment update,
// delayed births, history record.
func (s *Simulation) Step() {
	s.tick++
	s.coerced = 0

	s.buildSnapshots()

	var totals tickTotals
	var infection infectionOutcome

	if len(s.snapshots) > 0 {
		infection = s.applyInfection(s.snapshots)
		s.assignPredationHazard(s.snapshots)
		s.integrateAll()
		totals = s.applyResults()
		s.updateEnvironment(totals, infection)
	} else {
		s.updateEnvironmentEmpty()
	}

	s.eggLog[s.tick] = s.env.G
	births := s.resolveBirths()

	s.record(totals, infection, births)
}

// buildSnapshots captures the living population into the reusable snapshot
// slice. Hazard accumulators start each tick at zero.
func (s *Simulation) buildSnapshots() {
	s.snapshots = s.snapshots[:0]

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		id, phys, inf, bud := query.Get()

		s.snapshots = append(s.snapshots, agentSnapshot{
			Entity: entity,
			ID:     id.ID,
			Born:   id.Born,
			State: deb.State{
				L:     phys.L,
				E:     phys.E,
				D:     phys.D,
				RH:    phys.RH,
				P:     inf.P,
				RP:    inf.RP,
				DAM:   phys.DAM,
				HAZ:   0,
				Shell: bud.Shell,
			},
		})
	}

	if cap(s.results) < len(s.snapshots) {
		s.results = make([]deb.Result, len(s.snapshots))
	}
	s.results = s.results[:len(s.snapshots)]
}

// assignPredationHazard fills the per-host hazard baseline. The type-II
// response denominator uses the whole population, not the vulnerable subset.
func (s *Simulation) assignPredationHazard(snaps []agentSnapshot) {
	n := len(snaps)
	for i := range snaps {
		snaps[i].Hazard = predationHazard(&s.cfg.Predation, n, snaps[i].State.Shell)
	}
}

// applyResults writes integration results back to the world, resolves
// whole-unit releases, draws survival, and removes the dead. Draws are taken
// in snapshot order from the single stream.
func (s *Simulation) applyResults() tickTotals {
	d := &s.cfg.DEB
	var totals tickTotals

	var toRemove []ecs.Entity

	for i := range s.snapshots {
		snap := &s.snapshots[i]
		res := &s.results[i]

		s.coerced += sanitize(res)

		st := &res.State

		// Whole-unit releases; the remainder stays in the buffer and is
		// strictly smaller than the quantum.
		repro := int(st.RH / d.EggQuantum)
		st.RH -= float64(repro) * d.EggQuantum
		cercs := int(st.RP / d.CercQuantum)
		st.RP -= float64(cercs) * d.CercQuantum

		totals.EggsLaid += repro
		totals.CercsShed += cercs
		totals.FoodEaten += res.Food

		_, phys, inf, bud := s.mapper.Get(snap.Entity)
		phys.L = st.L
		phys.E = st.E
		phys.D = st.D
		phys.RH = st.RH
		phys.DAM = st.DAM
		inf.P = st.P
		inf.RP = st.RP
		bud.Haz = st.HAZ
		bud.Shell = res.Length
		bud.DEBMass = bodyMass(st.L, st.E, d)
		bud.AppMass = shellMass(res.Length, d)
		bud.Food = res.Food
		bud.Repro = repro
		bud.Cercs = cercs
		bud.Tick = s.tick

		// Survival draw: dies iff u < 1 - exp(-HAZ). HAZ = 0 never dies.
		if s.rng.Float64() < 1-res.Survival {
			toRemove = append(toRemove, snap.Entity)
		} else if st.P > 0 {
			totals.Infected++
		}
	}

	// Removal after the loop; the typed storage keeps its schema at any
	// surviving population size, including zero and one.
	for _, entity := range toRemove {
		s.mapper.Remove(entity)
		s.alive--
		totals.Deaths++
	}

	return totals
}

// record appends this tick's environment row and agent table to the history.
func (s *Simulation) record(totals tickTotals, infection infectionOutcome, births int) {
	if s.coerced > 0 {
		s.log.Warn("non-finite integrator output coerced to zero",
			"tick", s.tick, "values", s.coerced)
	}

	s.history.Append(telemetry.EnvRecord{
		Tick:          s.tick,
		Resource:      s.env.F,
		Miracidia:     s.env.M,
		Cercariae:     s.env.Z,
		Eggs:          s.env.G,
		Hosts:         s.alive,
		Infected:      totals.Infected,
		NewInfections: infection.Infections,
		MiracidiaDied: infection.Died,
		CercsShed:     totals.CercsShed,
		Deaths:        totals.Deaths,
		Births:        births,
		Coerced:       s.coerced,
	}, s.buildRows())
}

// buildRows materializes the current agent table. The row schema is fixed
// by the struct type whether the table holds 0, 1, or N hosts.
func (s *Simulation) buildRows() []telemetry.AgentRow {
	rows := make([]telemetry.AgentRow, 0, s.alive)

	query := s.filter.Query()
	for query.Next() {
		id, phys, inf, bud := query.Get()
		rows = append(rows, telemetry.AgentRow{
			Tick:    s.tick,
			ID:      id.ID,
			Born:    id.Born,
			L:       phys.L,
			E:       phys.E,
			D:       phys.D,
			RH:      phys.RH,
			P:       inf.P,
			RP:      inf.RP,
			DAM:     phys.DAM,
			Haz:     bud.Haz,
			Shell:   bud.Shell,
			DEBMass: bud.DEBMass,
			AppMass: bud.AppMass,
			Repro:   bud.Repro,
			Cercs:   bud.Cercs,
		})
	}
	return rows
}

// sanitize zeroes non-finite values in an integration result and returns
// how many were repaired. Survival is rebuilt from the repaired hazard.
func sanitize(res *deb.Result) int {
	st := &res.State
	n := 0
	for _, f := range []*float64{
		&st.L, &st.E, &st.D, &st.RH, &st.P, &st.RP, &st.DAM, &st.HAZ, &st.Shell,
		&res.Length, &res.Food,
	} {
		if !isFinite(*f) {
			*f = 0
			n++
		}
	}
	if n > 0 || !isFinite(res.Survival) {
		res.Survival = math.Exp(-st.HAZ)
	}
	return n
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
