package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/pond/config"
)

// OutputManager writes run output as CSV into a directory: env.csv with one
// row per tick, agents.csv with the full agent table per tick, and the
// effective config for provenance.
type OutputManager struct {
	dir        string
	envFile    *os.File
	agentsFile *os.File

	envHeaderWritten    bool
	agentsHeaderWritten bool
}

// NewOutputManager creates the output directory and files. Returns nil if
// dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "env.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating env.csv: %w", err)
	}
	om.envFile = f

	f, err = os.Create(filepath.Join(dir, "agents.csv"))
	if err != nil {
		om.envFile.Close()
		return nil, fmt.Errorf("creating agents.csv: %w", err)
	}
	om.agentsFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteEnv appends one environment row to env.csv.
func (om *OutputManager) WriteEnv(rec EnvRecord) error {
	if om == nil {
		return nil
	}

	records := []EnvRecord{rec}
	if !om.envHeaderWritten {
		if err := gocsv.Marshal(records, om.envFile); err != nil {
			return fmt.Errorf("writing env: %w", err)
		}
		om.envHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.envFile); err != nil {
		return fmt.Errorf("writing env: %w", err)
	}
	return nil
}

// WriteAgents appends one tick's agent table to agents.csv. An empty table
// writes nothing but still emits the header on first use.
func (om *OutputManager) WriteAgents(rows []AgentRow) error {
	if om == nil {
		return nil
	}

	if !om.agentsHeaderWritten {
		if err := gocsv.Marshal(rows, om.agentsFile); err != nil {
			return fmt.Errorf("writing agents: %w", err)
		}
		om.agentsHeaderWritten = true
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, om.agentsFile); err != nil {
		return fmt.Errorf("writing agents: %w", err)
	}
	return nil
}

// WriteHistory writes a complete run history.
func (om *OutputManager) WriteHistory(h *History) error {
	if om == nil {
		return nil
	}
	for i, rec := range h.Env {
		if err := om.WriteEnv(rec); err != nil {
			return err
		}
		if err := om.WriteAgents(h.Agents[i]); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var first error
	if err := om.envFile.Close(); err != nil {
		first = err
	}
	if err := om.agentsFile.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
