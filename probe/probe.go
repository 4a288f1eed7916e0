// Package probe reads the motion and surroundings of a participant: its speed, and whether the path in
// front of it is obstructed.
package probe

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/phaser/game"
	"github.com/oomph-ac/phaser/oerror"
)

// Mover is anything that reports its current velocity, in blocks per tick.
type Mover interface {
	Velocity() (mgl64.Vec3, error)
}

// Viewer is anything that can look ahead of itself and probe the blocks it is looking at.
type Viewer interface {
	// ViewOrigin returns the position the participant looks from.
	ViewOrigin() (mgl64.Vec3, error)
	// ViewDirection returns the direction the participant looks in.
	ViewDirection() (mgl64.Vec3, error)
	// ObstructionProbe returns true if a solid obstacle lies within maxDistance blocks of origin along
	// direction.
	ObstructionProbe(origin, direction mgl64.Vec3, maxDistance float64) (bool, error)
}

// Reading is a single velocity sample of a participant.
type Reading struct {
	Velocity mgl64.Vec3
	// Speed is the magnitude of Velocity in blocks per second. It is never negative.
	Speed float64
}

// Sample reads the current velocity of m. On failure, the error returned is an *oerror.QueryError and the
// caller should fall back to the last speed it knew of.
func Sample(m Mover) (Reading, error) {
	vel, err := m.Velocity()
	if err != nil {
		return Reading{}, oerror.Query("velocity", err)
	}
	speed := SpeedOf(vel)
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return Reading{}, oerror.Query("velocity", oerror.ErrUnavailable)
	}
	return Reading{Velocity: vel, Speed: speed}, nil
}

// Speed reads the current speed of m in blocks per second.
func Speed(m Mover) (float64, error) {
	r, err := Sample(m)
	return r.Speed, err
}

// SpeedOf converts a velocity in blocks per tick to a speed in blocks per second.
func SpeedOf(vel mgl64.Vec3) float64 {
	return vel.Len() * game.SpeedScale
}

// Scan probes maxDistance blocks forward from the view origin of v. A maxDistance of zero or less never
// finds an obstruction.
func Scan(v Viewer, maxDistance float64) (bool, error) {
	if maxDistance <= 0 {
		return false, nil
	}
	origin, err := v.ViewOrigin()
	if err != nil {
		return false, oerror.Query("view origin", err)
	}
	dir, err := v.ViewDirection()
	if err != nil {
		return false, oerror.Query("view direction", err)
	}
	if l := dir.Len(); l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return false, oerror.Query("view direction", oerror.ErrUnavailable)
	}
	hit, err := v.ObstructionProbe(origin, dir.Normalize(), maxDistance)
	if err != nil {
		return false, oerror.Query("obstruction", err)
	}
	return hit, nil
}

// Obstructed reports whether the path maxDistance blocks in front of v is blocked. If the probe fails in
// any way, the path is assumed to be obstructed.
func Obstructed(v Viewer, maxDistance float64) bool {
	hit, err := Scan(v, maxDistance)
	if err != nil {
		return true
	}
	return hit
}
