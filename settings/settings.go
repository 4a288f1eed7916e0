package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/oomph-ac/phaser/phase"
	"github.com/pelletier/go-toml"
)

// Settings contains everything that can be configured in the settings file of a phaser server.
type Settings struct {
	Phase struct {
		// EntrySpeed and ExitSpeed are in blocks per second.
		EntrySpeed       float64
		ExitSpeed        float64
		DebounceTicks    int
		LookAhead        float64
		AlwaysGhost      bool
		ModeChangeDelay  int
		Debug            bool
		SampleInterval   int
		RecheckInterval  int
		MomentumFraction float64
		GhostMode        string
		LightMode        string
	}
	HUD struct {
		Enabled bool
		// Interval is the amount of ticks between two updates of the speed tip.
		Interval int
	}
	Sentry struct {
		DSN string
	}
	Stats struct {
		// Address is the address the stats viewer listens on. Empty disables it.
		Address string
	}
}

// DefaultSettings returns the settings written to a new settings file.
func DefaultSettings() Settings {
	s := FromConfig(phase.DefaultConfig())
	s.HUD.Enabled = true
	s.HUD.Interval = 2
	return s
}

// FromConfig returns default Settings holding the phase options of conf.
func FromConfig(conf phase.Config) Settings {
	var s Settings
	s.Phase.EntrySpeed = conf.EntrySpeed
	s.Phase.ExitSpeed = conf.ExitSpeed
	s.Phase.DebounceTicks = conf.DebounceTicks
	s.Phase.LookAhead = conf.LookAhead
	s.Phase.AlwaysGhost = conf.AlwaysGhost
	s.Phase.ModeChangeDelay = conf.ModeChangeDelay
	s.Phase.Debug = conf.Debug
	s.Phase.SampleInterval = conf.SampleInterval
	s.Phase.RecheckInterval = conf.RecheckInterval
	s.Phase.MomentumFraction = conf.MomentumFraction
	s.Phase.GhostMode = string(conf.GhostMode)
	s.Phase.LightMode = string(conf.LightMode)
	return s
}

// Config converts the phase options of s to a phase.Config and validates it.
func (s Settings) Config() (phase.Config, error) {
	conf := phase.Config{
		EntrySpeed:       s.Phase.EntrySpeed,
		ExitSpeed:        s.Phase.ExitSpeed,
		DebounceTicks:    s.Phase.DebounceTicks,
		LookAhead:        s.Phase.LookAhead,
		AlwaysGhost:      s.Phase.AlwaysGhost,
		ModeChangeDelay:  s.Phase.ModeChangeDelay,
		Debug:            s.Phase.Debug,
		SampleInterval:   s.Phase.SampleInterval,
		RecheckInterval:  s.Phase.RecheckInterval,
		MomentumFraction: s.Phase.MomentumFraction,
		GhostMode:        phase.Mode(s.Phase.GhostMode),
		LightMode:        phase.Mode(s.Phase.LightMode),
	}
	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("phase settings: %w", err)
	}
	return conf, nil
}

// Load reads the settings file at path. If no file exists there yet, it is created holding the default
// settings. Options missing from the file keep their default value.
func Load(path string) (Settings, error) {
	s, err := Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, Save(path, s)
	}
	return s, err
}

// Read reads the settings file at path without ever writing to it. Options missing from the file keep
// their default value. If the file does not exist, the error returned satisfies errors.Is(err,
// os.ErrNotExist).
func Read(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// Save writes s to the settings file at path.
func Save(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
