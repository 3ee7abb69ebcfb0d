package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantum-menace/qtraj/internal/models"
)

// Scenario describes one simulation run as loaded from a YAML file.
type Scenario struct {
	Model        string        `yaml:"model"`
	Params       models.Params `yaml:"params"`
	Times        TimeGrid      `yaml:"times"`
	Trajectories int           `yaml:"trajectories"`
	Workers      int           `yaml:"workers"`
	Seed         uint64        `yaml:"seed"`
}

// TimeGrid describes an evenly spaced reporting grid.
type TimeGrid struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	Steps int     `yaml:"steps"`
}

// Build expands the grid into explicit time values, endpoint included.
func (g TimeGrid) Build() ([]float64, error) {
	if g.Steps < 1 {
		return nil, fmt.Errorf("times.steps must be at least 1, got %d", g.Steps)
	}
	if g.Stop <= g.Start {
		return nil, fmt.Errorf("times.stop (%g) must be greater than times.start (%g)", g.Stop, g.Start)
	}
	times := make([]float64, g.Steps+1)
	dt := (g.Stop - g.Start) / float64(g.Steps)
	for i := range times {
		times[i] = g.Start + float64(i)*dt
	}
	return times, nil
}

// loadScenario reads and validates a scenario file.
func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if sc.Model == "" {
		return nil, fmt.Errorf("scenario is missing a model name")
	}
	return &sc, nil
}

// defaultScenario is used when no scenario file is given.
func defaultScenario(model string) *Scenario {
	return &Scenario{
		Model: model,
		Times: TimeGrid{Start: 0, Stop: 2, Steps: 40},
		Seed:  1,
	}
}
