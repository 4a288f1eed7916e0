package phase

import "github.com/oomph-ac/phaser/oerror"

// Config holds the options of a Machine. A Config may be replaced at any time using Machine.UpdateConfig.
type Config struct {
	// EntrySpeed is the speed, in blocks per second, at or above which a participant starts phasing.
	EntrySpeed float64
	// ExitSpeed is the speed below which a phasing participant counts as inactive. It must not exceed
	// EntrySpeed: the gap between the two prevents flapping around a single boundary.
	ExitSpeed float64
	// DebounceTicks is the amount of consecutive inactive samples after which phasing ends.
	DebounceTicks int
	// LookAhead is the distance in blocks probed in front of a participant for obstructions.
	LookAhead float64
	// AlwaysGhost makes every entry use GhostMode, even if the path ahead is clear.
	AlwaysGhost bool
	// ModeChangeDelay is the amount of ticks between requesting a mode change and applying it.
	ModeChangeDelay int
	// Debug enables debug logging and sends debug messages to participants.
	Debug bool

	// SampleInterval is the amount of ticks between two samples of every participant.
	SampleInterval int
	// RecheckInterval is the amount of ticks between two obstruction re-checks of ghost-phasing
	// participants. A participant is only re-checked after phasing for at least this many samples.
	RecheckInterval int
	// MomentumFraction is the fraction of the speed stored at entry that is given back to the participant
	// along its view direction when it stops phasing. Zero disables momentum restoration.
	MomentumFraction float64

	// GhostMode is the mode used for full traversal through obstacles.
	GhostMode Mode
	// LightMode is the invulnerable but interactive mode used when the path ahead is clear.
	LightMode Mode
}

// DefaultConfig returns the Config used if none is passed to New.
func DefaultConfig() Config {
	return Config{
		EntrySpeed:       25,
		ExitSpeed:        7,
		DebounceTicks:    20,
		LookAhead:        8,
		ModeChangeDelay:  1,
		SampleInterval:   1,
		RecheckInterval:  5,
		MomentumFraction: 0.5,
		GhostMode:        ModeSpectator,
		LightMode:        ModeCreative,
	}
}

// Validate returns an error if c cannot be used by a Machine.
func (c Config) Validate() error {
	switch {
	case c.EntrySpeed <= 0:
		return oerror.New("entry speed must be positive, got %v", c.EntrySpeed)
	case c.ExitSpeed < 0:
		return oerror.New("exit speed must not be negative, got %v", c.ExitSpeed)
	case c.ExitSpeed > c.EntrySpeed:
		return oerror.New("exit speed %v must not exceed entry speed %v", c.ExitSpeed, c.EntrySpeed)
	case c.DebounceTicks < 1:
		return oerror.New("debounce ticks must be at least 1, got %d", c.DebounceTicks)
	case c.LookAhead < 0:
		return oerror.New("look-ahead must not be negative, got %v", c.LookAhead)
	case c.ModeChangeDelay < 1:
		return oerror.New("mode change delay must be at least 1 tick, got %d", c.ModeChangeDelay)
	case c.SampleInterval < 1:
		return oerror.New("sample interval must be at least 1 tick, got %d", c.SampleInterval)
	case c.RecheckInterval < 1:
		return oerror.New("recheck interval must be at least 1 tick, got %d", c.RecheckInterval)
	case c.MomentumFraction < 0 || c.MomentumFraction > 1:
		return oerror.New("momentum fraction must be within [0, 1], got %v", c.MomentumFraction)
	case c.GhostMode == "" || c.LightMode == "":
		return oerror.New("ghost and light modes must be set")
	case !c.GhostMode.Known():
		return oerror.New("unknown ghost mode %q", c.GhostMode)
	case !c.LightMode.Known():
		return oerror.New("unknown light mode %q", c.LightMode)
	case c.GhostMode == c.LightMode:
		return oerror.New("ghost and light mode must differ, both are %s", c.GhostMode)
	}
	return nil
}
