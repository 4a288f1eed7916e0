package phase

import "github.com/df-mc/dragonfly/server/event"

// Handler handles events of a Machine. Handler methods run while the Machine is locked and must not
// call back into it.
type Handler interface {
	// HandleEnter is called right before a participant starts entering target. Cancelling ctx keeps
	// the participant in its current mode, and it is sampled again next tick.
	HandleEnter(ctx *event.Context[Participant], target Mode)
}

// NopHandler implements Handler without doing anything.
type NopHandler struct{}

func (NopHandler) HandleEnter(*event.Context[Participant], Mode) {}

// Feedback renders the phase status of a single participant. It is created once the participant is
// tracked and runs independently of the Machine's own tick.
type Feedback interface {
	// SetThresholds updates the entry and exit speeds shown to the participant.
	SetThresholds(entry, exit float64)
	// Close stops rendering. Called when the participant leaves or the Machine closes.
	Close()
}

// FeedbackFactory creates the Feedback for a newly tracked participant.
type FeedbackFactory func(p Participant, entry, exit float64) Feedback

// EndEffects is notified exactly once every time a participant stops phasing normally. It is not called
// for participants that vanished while phasing.
type EndEffects interface {
	PhaseEnded(p Participant, rec Record)
}

// NopEffects implements EndEffects without doing anything.
type NopEffects struct{}

func (NopEffects) PhaseEnded(Participant, Record) {}
