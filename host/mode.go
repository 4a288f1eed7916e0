package host

import (
	"github.com/df-mc/dragonfly/server/world"
	"github.com/oomph-ac/phaser/oerror"
	"github.com/oomph-ac/phaser/phase"
)

// ModeOf returns the phase.Mode matching the game mode passed.
func ModeOf(gm world.GameMode) (phase.Mode, error) {
	switch gm {
	case world.GameModeSurvival:
		return phase.ModeSurvival, nil
	case world.GameModeCreative:
		return phase.ModeCreative, nil
	case world.GameModeAdventure:
		return phase.ModeAdventure, nil
	case world.GameModeSpectator:
		return phase.ModeSpectator, nil
	}
	return "", oerror.New("unknown game mode %T", gm)
}

// GameModeOf returns the game mode matching the phase.Mode passed.
func GameModeOf(mode phase.Mode) (world.GameMode, error) {
	switch mode {
	case phase.ModeSurvival:
		return world.GameModeSurvival, nil
	case phase.ModeCreative:
		return world.GameModeCreative, nil
	case phase.ModeAdventure:
		return world.GameModeAdventure, nil
	case phase.ModeSpectator:
		return world.GameModeSpectator, nil
	}
	return nil, oerror.New("unknown mode %q", mode)
}
