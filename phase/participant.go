package phase

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oomph-ac/phaser/probe"
	"github.com/oomph-ac/phaser/scheduler"
)

// Mode is the interaction mode of a participant, such as survival or spectator.
type Mode string

const (
	ModeSurvival  Mode = "survival"
	ModeCreative  Mode = "creative"
	ModeAdventure Mode = "adventure"
	ModeSpectator Mode = "spectator"
)

// Known reports whether m is one of the modes above.
func (m Mode) Known() bool {
	switch m {
	case ModeSurvival, ModeCreative, ModeAdventure, ModeSpectator:
		return true
	}
	return false
}

// Participant is a handle to a participant of the host world. The Machine never owns a Participant: it
// only holds on to the handle while the participant is tracked, and re-validates it before using it
// after any delay.
type Participant interface {
	probe.Mover
	probe.Viewer

	// ID returns the stable identifier of the participant.
	ID() uuid.UUID
	// Name returns a human-readable name used in logs.
	Name() string
	// Valid returns false once the participant disconnected, died or otherwise became unusable.
	Valid() bool

	Position() (mgl64.Vec3, error)
	SetVelocity(vel mgl64.Vec3) error

	Mode() (Mode, error)
	// SetMode requests an interaction mode change. The change is not guaranteed to be observable
	// until the next tick.
	SetMode(mode Mode) error

	// Message sends a debug message to the participant.
	Message(msg string)
}

// Host enumerates the participants currently connected to the world.
type Host interface {
	Participants() []Participant
}

// Scheduler runs callbacks on future ticks of the host. *scheduler.Scheduler implements it.
type Scheduler interface {
	RunEvery(f func(), interval int) scheduler.Handle
	RunAfter(f func(), delay int) scheduler.Handle
	Cancel(h scheduler.Handle)
}
