package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("embedded defaults failed to load: %v", err)
	}
	if cfg.Run.Ticks <= 0 {
		t.Error("defaults must set a positive tick count")
	}
	if cfg.Run.InitialHosts <= 0 {
		t.Error("defaults must found a population")
	}
	if cfg.Predation.Policy != PolicyWindow && cfg.Predation.Policy != PolicyGradient {
		t.Errorf("unexpected default predation policy %q", cfg.Predation.Policy)
	}
}

func TestFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := "run:\n  ticks: 7\n  initial_hosts: 3\npredation:\n  density: 1.5\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Run.Ticks != 7 {
		t.Errorf("ticks = %d, want 7", cfg.Run.Ticks)
	}
	if cfg.Run.InitialHosts != 3 {
		t.Errorf("initial_hosts = %d, want 3", cfg.Run.InitialHosts)
	}
	if cfg.Predation.Density != 1.5 {
		t.Errorf("predation.density = %g, want 1.5", cfg.Predation.Density)
	}
	// Untouched fields keep their defaults.
	def := MustLoad("")
	if cfg.DEB.Nu != def.DEB.Nu {
		t.Errorf("deb.nu changed without an override: %g vs %g", cfg.DEB.Nu, def.DEB.Nu)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestValidateNamesTheParameter(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero ticks", func(c *Config) { c.Run.Ticks = 0 }, "run.ticks"},
		{"negative hosts", func(c *Config) { c.Run.InitialHosts = -1 }, "run.initial_hosts"},
		{"inverted lengths", func(c *Config) { c.Run.MinLength = 9; c.Run.MaxLength = 2 }, "run.min_length"},
		{"negative food", func(c *Config) { c.Run.InitialFood = -1 }, "run.initial_food"},
		{"zero volume", func(c *Config) { c.Transmission.Volume = 0 }, "transmission.volume"},
		{"zero step", func(c *Config) { c.Transmission.Step = 0 }, "transmission.step"},
		{"sigma above one", func(c *Config) { c.Transmission.Sigma = 1.5 }, "transmission.sigma"},
		{"negative epsilon", func(c *Config) { c.Transmission.Epsilon = -0.1 }, "transmission.epsilon"},
		{"negative decay", func(c *Config) { c.Transmission.MDeath = -1 }, "transmission.m_death"},
		{"unknown resource mode", func(c *Config) { c.Resource.Mode = "manna" }, "resource.mode"},
		{"zero capacity", func(c *Config) { c.Resource.Mode = ResourceLogistic; c.Resource.K = 0 }, "resource.k"},
		{"negative detritus", func(c *Config) { c.Resource.Mode = ResourceDetritus; c.Resource.Det = -1 }, "resource.det"},
		{"unknown policy", func(c *Config) { c.Predation.Policy = "ambush" }, "predation.policy"},
		{"inverted gape", func(c *Config) { c.Predation.GapeMin = 8; c.Predation.GapeMax = 2 }, "predation.gape_min"},
		{"negative attack", func(c *Config) { c.Predation.Attack = -0.1 }, "predation.density/attack/handling"},
		{"hatch above one", func(c *Config) { c.Demography.Hatch = 2 }, "demography.hatch"},
		{"negative delay", func(c *Config) { c.Demography.Delay = -1 }, "demography.delay"},
		{"zero egg quantum", func(c *Config) { c.DEB.EggQuantum = 0 }, "deb.egg_quantum"},
		{"zero cercarial quantum", func(c *Config) { c.DEB.CercQuantum = 0 }, "deb.cerc_quantum"},
		{"negative infection mass", func(c *Config) { c.DEB.InfectionMass = -1 }, "deb.infection_mass"},
		{"zero max length", func(c *Config) { c.DEB.Lm = 0 }, "deb.lm"},
		{"zero natal length", func(c *Config) { c.DEB.NatalLength = 0 }, "deb.natal_length"},
		{"NaN conductance", func(c *Config) { c.DEB.Nu = math.NaN() }, "deb.nu"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := MustLoad("")
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not name %q", err, tc.want)
			}
		})
	}
}

func TestGapeUpper(t *testing.T) {
	p := &PredationConfig{GapeMax: 10}
	if got := p.GapeUpper(); got != 10 {
		t.Errorf("GapeUpper() = %g, want 10", got)
	}
	p.GapeMax = 0
	if got := p.GapeUpper(); !math.IsInf(got, 1) {
		t.Errorf("non-positive gape_max must be unbounded, got %g", got)
	}
	p.GapeMax = -3
	if got := p.GapeUpper(); !math.IsInf(got, 1) {
		t.Errorf("negative gape_max must be unbounded, got %g", got)
	}
}

func TestWriteYAMLRoundTrips(t *testing.T) {
	cfg := MustLoad("")
	cfg.Run.Ticks = 23
	cfg.Predation.Policy = PolicyGradient

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if back.Run.Ticks != 23 || back.Predation.Policy != PolicyGradient {
		t.Errorf("round trip lost overrides: ticks=%d policy=%q", back.Run.Ticks, back.Predation.Policy)
	}
}
