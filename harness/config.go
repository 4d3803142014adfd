package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
	"gopkg.in/yaml.v3"
)

// Config holds the stimulus timing and pass criteria of the scenarios.
type Config struct {
	// ClockMHz is the reference clock frequency. Default: 50 MHz.
	ClockMHz float64 `json:"clock_mhz" yaml:"clock_mhz"`

	// ResetCycles is how long reset is held low. Default: 5 cycles.
	ResetCycles uint64 `json:"reset_cycles" yaml:"reset_cycles"`

	// IdleCycles is how long the line idles high before stimulus.
	// Default: 100 cycles.
	IdleCycles uint64 `json:"idle_cycles" yaml:"idle_cycles"`

	// BitCycles is the stimulus bit period. Default: 5208 cycles (8 × 651).
	BitCycles uint64 `json:"bit_cycles" yaml:"bit_cycles"`

	// GapBits is the idle time after each sent frame, in bit periods.
	// Default: 2.
	GapBits uint64 `json:"gap_bits" yaml:"gap_bits"`

	// TriggerTimeout is how long to wait for the trigger once all bytes
	// are sent. Default: 10000 cycles.
	TriggerTimeout uint64 `json:"trigger_timeout" yaml:"trigger_timeout"`

	// MonitorOffset is the delay from a detected start bit to the monitor's
	// first sample. Default: 5 cycles.
	MonitorOffset uint64 `json:"monitor_offset" yaml:"monitor_offset"`

	// OversampleWindow bounds the oversample tick check. Default: 10000 cycles.
	OversampleWindow uint64 `json:"oversample_window" yaml:"oversample_window"`

	// BaudWindow bounds the baud tick check. Default: 60000 cycles.
	BaudWindow uint64 `json:"baud_window" yaml:"baud_window"`

	// MinTicks is the number of pulses each tick check requires. Default: 10.
	MinTicks uint64 `json:"min_ticks" yaml:"min_ticks"`

	// NoTriggerBaudTicks is how long a non-matching command is watched.
	// Default: 10000 baud ticks.
	NoTriggerBaudTicks uint64 `json:"no_trigger_baud_ticks" yaml:"no_trigger_baud_ticks"`

	// IdleBits is how long the idle-line check runs, in bit periods.
	// Default: 50.
	IdleBits uint64 `json:"idle_bits" yaml:"idle_bits"`
}

// DefaultConfig returns the timing for a 50 MHz clock at 9600 baud.
func DefaultConfig() *Config {
	return &Config{
		ClockMHz:           50,
		ResetCycles:        5,
		IdleCycles:         100,
		BitCycles:          5208,
		GapBits:            2,
		TriggerTimeout:     10000,
		MonitorOffset:      5,
		OversampleWindow:   10000,
		BaudWindow:         60000,
		MinTicks:           10,
		NoTriggerBaudTicks: 10000,
		IdleBits:           50,
	}
}

// ClockFreq returns the reference clock as a simulation frequency.
func (c *Config) ClockFreq() sim.Freq {
	return sim.Freq(c.ClockMHz) * sim.MHz
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig loads a Config from a JSON or YAML file, chosen by extension.
// Fields missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read harness config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse harness config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON or YAML file, chosen by extension.
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize harness config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write harness config file: %w", err)
	}

	return nil
}

// Validate checks that the timing values are usable.
func (c *Config) Validate() error {
	if c.ClockMHz <= 0 {
		return fmt.Errorf("clock_mhz must be > 0")
	}
	if c.BitCycles < 2 {
		return fmt.Errorf("bit_cycles must be >= 2")
	}
	if c.MonitorOffset >= c.BitCycles {
		return fmt.Errorf("monitor_offset must be < bit_cycles")
	}
	if c.ResetCycles == 0 {
		return fmt.Errorf("reset_cycles must be > 0")
	}
	if c.MinTicks == 0 {
		return fmt.Errorf("min_ticks must be > 0")
	}
	if c.OversampleWindow == 0 || c.BaudWindow == 0 {
		return fmt.Errorf("tick windows must be > 0")
	}
	if c.TriggerTimeout == 0 {
		return fmt.Errorf("trigger_timeout must be > 0")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
