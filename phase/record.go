package phase

import "github.com/go-gl/mathgl/mgl64"

// Record holds the phase bookkeeping of a single tracked participant.
type Record struct {
	State State

	LastPosition mgl64.Vec3
	LastSpeed    float64

	// InactiveFrames is the amount of consecutive samples below the exit speed while phasing.
	InactiveFrames int
	// PhasedTicks is the amount of samples taken since the participant started phasing.
	PhasedTicks int

	// PriorMode is the mode the participant was in right before it started entering. It is never the
	// mode it is phasing in.
	PriorMode Mode
	// StoredVelocity is the velocity of the participant right before it started entering.
	StoredVelocity mgl64.Vec3

	// Target is the phasing mode applied to the participant, and Ghost is true if Target is the
	// configured ghost mode rather than the light mode.
	Target Mode
	Ghost  bool

	ExitReason ExitReason

	// intent identifies the continuation currently pending for the record, zero if there is none.
	intent uint64
}
