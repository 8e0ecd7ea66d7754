// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Predation policy flags. Exactly one policy is active per run.
const (
	PolicyWindow   = "window"   // uniform hazard inside the gape window
	PolicyGradient = "gradient" // hazard decays exponentially with shell length
)

// Resource input modes.
const (
	ResourceLogistic = "logistic" // logistic regrowth toward carrying capacity
	ResourceDetritus = "detritus" // fixed detrital increment (continuous or pulsed)
)

// Config holds all simulation parameters. It is immutable for the duration
// of a run; time-varying inputs are explicit schedules, not mutation.
type Config struct {
	Run          RunConfig          `yaml:"run"`
	DEB          DEBConfig          `yaml:"deb"`
	Transmission TransmissionConfig `yaml:"transmission"`
	Resource     ResourceConfig     `yaml:"resource"`
	Predation    PredationConfig    `yaml:"predation"`
	Demography   DemographyConfig   `yaml:"demography"`
}

// RunConfig holds initialization and duration settings.
type RunConfig struct {
	InitialHosts int     `yaml:"initial_hosts"` // founding population size
	MinLength    float64 `yaml:"min_length"`    // lower bound of initial structural length (mm)
	MaxLength    float64 `yaml:"max_length"`    // upper bound of initial structural length (mm)
	InitialFood  float64 `yaml:"initial_food"`  // starting resource density (mg C/L)
	Ticks        int     `yaml:"ticks"`         // number of daily ticks to run
}

// DEBConfig holds the physiological parameter set consumed by the DEB
// integrator, plus the release quanta and natal state used by the engine.
type DEBConfig struct {
	// Feeding and reserve
	IMax float64 `yaml:"imax"` // max area-specific ingestion (mg/d/mm^2)
	Fh   float64 `yaml:"fh"`   // ingestion half-saturation (mg C/L)
	Nu   float64 `yaml:"nu"`   // energy conductance (mm/d)
	EM   float64 `yaml:"em"`   // reserve capacity scaling (mg/mm^3)

	// Growth
	G  float64 `yaml:"g"`  // energy investment ratio
	Lm float64 `yaml:"lm"` // maximum structural length (mm)

	// Maturity and host reproduction
	KRep float64 `yaml:"krep"` // reproduction flux coefficient (mg/mm^3/d)
	DR   float64 `yaml:"dr"`   // maturity threshold (mg)
	Chi  float64 `yaml:"chi"`  // castration intensity per unit parasite biomass (1/mg)

	// Parasite
	AlphaP float64 `yaml:"alpha_p"` // parasite uptake rate from host reserve (1/d)
	KapC   float64 `yaml:"kap_c"`   // fraction of parasite intake shed as cercarial mass
	MP     float64 `yaml:"mp"`      // parasite biomass turnover (1/d)

	// Damage and hazard
	Theta   float64 `yaml:"theta"`    // damage accrual per unit parasite biomass (1/d)
	KDam    float64 `yaml:"kdam"`     // damage repair rate (1/d)
	HB      float64 `yaml:"hb"`       // background hazard (1/d)
	HDam    float64 `yaml:"hdam"`     // hazard per unit damage (1/d)
	EStarve float64 `yaml:"estarve"`  // scaled reserve density below which starvation hazard accrues
	HStarve float64 `yaml:"hstarve"`  // starvation hazard per unit reserve deficit (1/d)

	// Shell
	Beta   float64 `yaml:"beta"`    // shell growth relaxation rate (1/d)
	DeltaM float64 `yaml:"delta_m"` // shell-to-structure shape ratio

	// Derived mass coefficients
	Rho    float64 `yaml:"rho"`     // structural density (mg/mm^3)
	Omega  float64 `yaml:"omega"`   // reserve contribution to body mass
	ShellA float64 `yaml:"shell_a"` // apparent mass allometry coefficient
	ShellB float64 `yaml:"shell_b"` // apparent mass allometry exponent

	// Release quanta and infection increment
	EggQuantum    float64 `yaml:"egg_quantum"`    // egg mass per released egg (mg)
	CercQuantum   float64 `yaml:"cerc_quantum"`   // cercarial mass per released cercaria (mg)
	InfectionMass float64 `yaml:"infection_mass"` // parasite biomass added per infection event (mg)

	// Natal state for hatchlings
	NatalLength float64 `yaml:"natal_length"` // structural length at hatch (mm)
	NatalShell  float64 `yaml:"natal_shell"`  // shell length at hatch (mm)
	InitE       float64 `yaml:"init_e"`       // scaled reserve density at creation
}

// TransmissionConfig holds free-living parasite stage parameters.
type TransmissionConfig struct {
	Epsilon float64 `yaml:"epsilon"` // per-host miracidial encounter rate (L/d)
	Volume  float64 `yaml:"volume"`  // environment volume (L)
	Sigma   float64 `yaml:"sigma"`   // infection success probability given encounter
	MDeath  float64 `yaml:"m_death"` // miracidial death rate (1/d)
	ZDeath  float64 `yaml:"z_death"` // cercarial death rate (1/d)
	Step    float64 `yaml:"step"`    // tick duration (d)
}

// ResourceConfig holds resource pool dynamics and scheduled inputs.
type ResourceConfig struct {
	Mode string  `yaml:"mode"` // "logistic" or "detritus"
	R    float64 `yaml:"r"`    // logistic growth rate (1/d)
	K    float64 `yaml:"k"`    // carrying capacity (mg C/L)
	Det  float64 `yaml:"det"`  // detrital input per scheduled tick (mg C/L)

	// DetOnTicks restricts detrital input to the listed ticks.
	// Empty means every tick (continuous input).
	DetOnTicks []int `yaml:"det_on_ticks"`

	// Miracidia introduction schedule: MiracidiaInput individuals are added
	// on each listed tick.
	MiracidiaInput   int   `yaml:"miracidia_input"`
	MiracidiaOnTicks []int `yaml:"miracidia_on_ticks"`
}

// PredationConfig holds the size-selective predation hazard parameters.
type PredationConfig struct {
	Density  float64 `yaml:"density"`  // predator density (1/L or count, units cancel with attack)
	Attack   float64 `yaml:"attack"`   // attack rate
	Handling float64 `yaml:"handling"` // handling time (d)
	Policy   string  `yaml:"policy"`   // "window" or "gradient"
	GapeMin  float64 `yaml:"gape_min"` // smallest edible shell length (mm), window policy
	GapeMax  float64 `yaml:"gape_max"` // largest edible shell length (mm), window policy; <=0 means unbounded
	Slope    float64 `yaml:"slope"`    // selectivity gradient (1/mm), gradient policy
}

// DemographyConfig holds hatching parameters.
type DemographyConfig struct {
	Hatch float64 `yaml:"hatch"` // egg hatching probability
	Delay int     `yaml:"delay"` // incubation delay in ticks
}

// Load reads configuration from a YAML file, merging over embedded defaults.
// An empty path loads the defaults alone. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error. Intended for tests.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Validate checks the parameter set before any tick executes. Each failure
// names the offending parameter.
func (c *Config) Validate() error {
	if c.Run.Ticks <= 0 {
		return fmt.Errorf("run.ticks must be positive, got %d", c.Run.Ticks)
	}
	if c.Run.InitialHosts < 0 {
		return fmt.Errorf("run.initial_hosts must be non-negative, got %d", c.Run.InitialHosts)
	}
	if c.Run.MinLength <= 0 || c.Run.MaxLength < c.Run.MinLength {
		return fmt.Errorf("run.min_length/max_length must satisfy 0 < min <= max, got [%g, %g]",
			c.Run.MinLength, c.Run.MaxLength)
	}
	if c.Run.InitialFood < 0 {
		return fmt.Errorf("run.initial_food must be non-negative, got %g", c.Run.InitialFood)
	}

	if c.Transmission.Volume <= 0 {
		return fmt.Errorf("transmission.volume must be positive, got %g", c.Transmission.Volume)
	}
	if c.Transmission.Step <= 0 {
		return fmt.Errorf("transmission.step must be positive, got %g", c.Transmission.Step)
	}
	if c.Transmission.Sigma < 0 || c.Transmission.Sigma > 1 {
		return fmt.Errorf("transmission.sigma must be in [0, 1], got %g", c.Transmission.Sigma)
	}
	if c.Transmission.Epsilon < 0 {
		return fmt.Errorf("transmission.epsilon must be non-negative, got %g", c.Transmission.Epsilon)
	}
	if c.Transmission.MDeath < 0 || c.Transmission.ZDeath < 0 {
		return fmt.Errorf("transmission.m_death/z_death must be non-negative, got %g/%g",
			c.Transmission.MDeath, c.Transmission.ZDeath)
	}

	switch c.Resource.Mode {
	case ResourceLogistic:
		if c.Resource.K <= 0 {
			return fmt.Errorf("resource.k must be positive in logistic mode, got %g", c.Resource.K)
		}
		if c.Resource.R < 0 {
			return fmt.Errorf("resource.r must be non-negative, got %g", c.Resource.R)
		}
	case ResourceDetritus:
		if c.Resource.Det < 0 {
			return fmt.Errorf("resource.det must be non-negative, got %g", c.Resource.Det)
		}
	default:
		return fmt.Errorf("resource.mode must be %q or %q, got %q",
			ResourceLogistic, ResourceDetritus, c.Resource.Mode)
	}

	switch c.Predation.Policy {
	case PolicyWindow:
		if c.Predation.GapeMax > 0 && c.Predation.GapeMin > c.Predation.GapeMax {
			return fmt.Errorf("predation.gape_min must not exceed gape_max, got [%g, %g]",
				c.Predation.GapeMin, c.Predation.GapeMax)
		}
	case PolicyGradient:
		// Any slope sign is allowed; selectivity may grow or decay with length.
	default:
		return fmt.Errorf("predation.policy must be %q or %q, got %q",
			PolicyWindow, PolicyGradient, c.Predation.Policy)
	}
	if c.Predation.Density < 0 || c.Predation.Attack < 0 || c.Predation.Handling < 0 {
		return fmt.Errorf("predation.density/attack/handling must be non-negative, got %g/%g/%g",
			c.Predation.Density, c.Predation.Attack, c.Predation.Handling)
	}

	if c.Demography.Hatch < 0 || c.Demography.Hatch > 1 {
		return fmt.Errorf("demography.hatch must be in [0, 1], got %g", c.Demography.Hatch)
	}
	if c.Demography.Delay < 0 {
		return fmt.Errorf("demography.delay must be non-negative, got %d", c.Demography.Delay)
	}

	if c.DEB.EggQuantum <= 0 {
		return fmt.Errorf("deb.egg_quantum must be positive, got %g", c.DEB.EggQuantum)
	}
	if c.DEB.CercQuantum <= 0 {
		return fmt.Errorf("deb.cerc_quantum must be positive, got %g", c.DEB.CercQuantum)
	}
	if c.DEB.InfectionMass < 0 {
		return fmt.Errorf("deb.infection_mass must be non-negative, got %g", c.DEB.InfectionMass)
	}
	if c.DEB.Lm <= 0 {
		return fmt.Errorf("deb.lm must be positive, got %g", c.DEB.Lm)
	}
	if c.DEB.NatalLength <= 0 || c.DEB.NatalShell <= 0 {
		return fmt.Errorf("deb.natal_length/natal_shell must be positive, got %g/%g",
			c.DEB.NatalLength, c.DEB.NatalShell)
	}
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"deb.imax", c.DEB.IMax}, {"deb.fh", c.DEB.Fh}, {"deb.nu", c.DEB.Nu},
		{"deb.em", c.DEB.EM}, {"deb.g", c.DEB.G}, {"deb.rho", c.DEB.Rho},
	} {
		if v.val <= 0 || math.IsNaN(v.val) {
			return fmt.Errorf("%s must be positive, got %g", v.name, v.val)
		}
	}
	return nil
}

// GapeUpper returns the effective upper gape bound, treating a non-positive
// configured value as unbounded.
func (p *PredationConfig) GapeUpper() float64 {
	if p.GapeMax <= 0 {
		return math.Inf(1)
	}
	return p.GapeMax
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
