package assert

import "github.com/oomph-ac/phaser/oerror"

// IsTrue panics with an *oerror.PhaseError built from message and args if ok is false. Panics raised
// here are recovered by the per-participant isolation of the phase machine.
func IsTrue(ok bool, message string, args ...any) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}
