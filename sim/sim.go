// Package sim implements the simulation engine: per-tick orchestration of
// host physiology, parasite exposure, size-selective predation, stochastic
// demography, and the shared environment pools.
package sim

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"golang.org/x/exp/rand"

	"github.com/pthm-cable/pond/components"
	"github.com/pthm-cable/pond/config"
	"github.com/pthm-cable/pond/deb"
	"github.com/pthm-cable/pond/telemetry"
)

// Environment holds the shared pools, one instance per run, mutated in
// place once per tick.
type Environment struct {
	F float64 // resource density (mg C/L)
	M int     // miracidia count
	Z float64 // cercariae density (1/L)
	G int     // eggs produced this tick
}

// agentSnapshot captures read-only per-host state for one tick's
// computation. Workers integrate over snapshots; all writes and all random
// draws happen single-threaded in snapshot order.
type agentSnapshot struct {
	Entity ecs.Entity
	ID     uint32
	Born   int32
	State  deb.State
	Hazard float64 // predation hazard baseline for this tick
}

// Simulation drives one run. Ticks are strictly sequential; within a tick,
// host integration is parallel but every stochastic draw is taken from the
// single seeded stream in a fixed order.
type Simulation struct {
	cfg   *config.Config
	integ deb.Integrator
	rng   *rand.Rand
	log   *slog.Logger

	world  *ecs.World
	mapper *ecs.Map4[components.Identity, components.Physiology, components.Infection, components.Budget]
	filter *ecs.Filter4[components.Identity, components.Physiology, components.Infection, components.Budget]

	env     Environment
	eggLog  []int // eggs produced per tick, indexed by tick (feeds delayed births)
	history *telemetry.History

	tick   int32
	nextID uint32
	alive  int

	// Reusable per-tick buffers
	snapshots []agentSnapshot
	results   []deb.Result
	parallel  *parallelState

	coerced int // non-finite integrator outputs zeroed this tick
}

// New builds a simulation from a validated config. The integrator defaults
// to RK4 when nil. The seed fixes the full draw sequence; identical seed,
// config, and integrator reproduce identical trajectories.
func New(cfg *config.Config, integ deb.Integrator, seed uint64, logger *slog.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if integ == nil {
		integ = deb.NewRK4()
	}
	if logger == nil {
		logger = slog.Default()
	}

	world := ecs.NewWorld()
	s := &Simulation{
		cfg:   cfg,
		integ: integ,
		rng:   rand.New(rand.NewSource(seed)),
		log:   logger,
		world: world,
		mapper: ecs.NewMap4[
			components.Identity,
			components.Physiology,
			components.Infection,
			components.Budget,
		](world),
		filter: ecs.NewFilter4[
			components.Identity,
			components.Physiology,
			components.Infection,
			components.Budget,
		](world),
		env: Environment{F: cfg.Run.InitialFood},
		eggLog:    make([]int, cfg.Run.Ticks+1),
		history:   telemetry.NewHistory(cfg.Run.Ticks),
		nextID:    1,
		snapshots: make([]agentSnapshot, 0, 256),
		results:   make([]deb.Result, 0, 256),
		parallel:  newParallelState(),
	}

	s.spawnInitialPopulation()
	return s, nil
}

// spawnInitialPopulation creates the founding hosts with randomized
// structural length and the default reserve density.
func (s *Simulation) spawnInitialPopulation() {
	run := &s.cfg.Run
	d := &s.cfg.DEB
	for i := 0; i < run.InitialHosts; i++ {
		l := run.MinLength + s.rng.Float64()*(run.MaxLength-run.MinLength)
		s.spawnHost(l, d.DeltaM*l, d.InitE)
	}
}

// spawnHost appends one host with a fresh unique ID.
func (s *Simulation) spawnHost(length, shell, e float64) ecs.Entity {
	d := &s.cfg.DEB

	id := components.Identity{ID: s.nextID, Born: s.tick}
	s.nextID++

	phys := components.Physiology{L: length, E: e}
	inf := components.Infection{}
	bud := components.Budget{
		Shell:   shell,
		DEBMass: bodyMass(length, e, d),
		AppMass: shellMass(shell, d),
		Tick:    s.tick,
	}

	entity := s.mapper.NewEntity(&id, &phys, &inf, &bud)
	s.alive++
	return entity
}

// Run executes every configured tick and returns the full per-tick history
// of environment pools and agent tables.
func (s *Simulation) Run() *telemetry.History {
	for s.tick < int32(s.cfg.Run.Ticks) {
		s.Step()
	}
	return s.history
}

// Env returns the current environment pools.
func (s *Simulation) Env() Environment {
	return s.env
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// Alive returns the current living population size.
func (s *Simulation) Alive() int {
	return s.alive
}

// Close releases the worker pool. The simulation must not be stepped after
// closing.
func (s *Simulation) Close() {
	s.parallel.stopWorkers()
}

// bodyMass is the structure-plus-reserve mass derived from L and e.
func bodyMass(length, e float64, d *config.DEBConfig) float64 {
	return d.Rho * length * length * length * (1 + d.Omega*e)
}

// shellMass is the apparent mass from the shell length allometry.
func shellMass(shell float64, d *config.DEBConfig) float64 {
	if shell <= 0 {
		return 0
	}
	return d.ShellA * math.Pow(shell, d.ShellB)
}
