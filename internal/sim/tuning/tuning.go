package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz         int    `yaml:"tick_rate_hz"`
	WorldType          string `yaml:"world_type"`
	DeviceTier         string `yaml:"device_tier"`
	ViewDistance       int    `yaml:"view_distance"`
	EvictMargin        int    `yaml:"evict_margin"`
	GenBudgetPerTick   int    `yaml:"gen_budget_per_tick"`
	SignalEveryTicks   int    `yaml:"signal_every_ticks"`
	FluidEveryTicks    int    `yaml:"fluid_every_ticks"`
	FluidBudget        int    `yaml:"fluid_budget"`
	ButtonReleaseTicks int    `yaml:"button_release_ticks"`
	SnapshotEveryTicks int    `yaml:"snapshot_every_ticks"`
}

// Defaults mirrors the shipped configs/tuning.yaml for runs without a config
// directory. Zero fields fall through to the world's own defaulting.
func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      30,
		WorldType:       "normal",
		DeviceTier:      "mid",
		ViewDistance:    4,
	}
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
