// Package telemetry holds the simulation's output contract: per-tick
// environment records and agent tables, CSV serialization, and replicate
// summary statistics. Reporting consumes these types; the engine has no
// dependency on presentation.
package telemetry

// EnvRecord is one tick's environment row.
type EnvRecord struct {
	Tick          int32   `csv:"tick"`
	Resource      float64 `csv:"resource"`
	Miracidia     int     `csv:"miracidia"`
	Cercariae     float64 `csv:"cercariae"`
	Eggs          int     `csv:"eggs"`
	Hosts         int     `csv:"hosts"`
	Infected      int     `csv:"infected"`
	NewInfections int     `csv:"new_infections"`
	MiracidiaDied int     `csv:"miracidia_died"`
	CercsShed     int     `csv:"cercs_shed"`
	Deaths        int     `csv:"deaths"`
	Births        int     `csv:"births"`
	Coerced       int     `csv:"coerced"`
}

// AgentRow is one host's record in a tick's agent table. The column set is
// fixed by the type regardless of population size.
type AgentRow struct {
	Tick    int32   `csv:"tick"`
	ID      uint32  `csv:"id"`
	Born    int32   `csv:"born"`
	L       float64 `csv:"l"`
	E       float64 `csv:"e"`
	D       float64 `csv:"d"`
	RH      float64 `csv:"rh"`
	P       float64 `csv:"p"`
	RP      float64 `csv:"rp"`
	DAM     float64 `csv:"dam"`
	Haz     float64 `csv:"haz"`
	Shell   float64 `csv:"shell"`
	DEBMass float64 `csv:"deb_mass"`
	AppMass float64 `csv:"app_mass"`
	Repro   int     `csv:"repro"`
	Cercs   int     `csv:"cercs"`
}

// History is the full per-tick trajectory of one run.
type History struct {
	Env    []EnvRecord
	Agents [][]AgentRow
}

// NewHistory allocates a history for the given tick count.
func NewHistory(ticks int) *History {
	return &History{
		Env:    make([]EnvRecord, 0, ticks),
		Agents: make([][]AgentRow, 0, ticks),
	}
}

// Append records one tick.
func (h *History) Append(env EnvRecord, agents []AgentRow) {
	h.Env = append(h.Env, env)
	h.Agents = append(h.Agents, agents)
}

// TotalCercariae sums cercarial shedding over the whole run, the model's
// transmission-potential endpoint.
func (h *History) TotalCercariae() int {
	total := 0
	for _, rec := range h.Env {
		total += rec.CercsShed
	}
	return total
}

// FinalHosts returns the living population after the last tick.
func (h *History) FinalHosts() int {
	if len(h.Env) == 0 {
		return 0
	}
	return h.Env[len(h.Env)-1].Hosts
}
