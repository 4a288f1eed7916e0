package game

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Round64 will round a float64 to a given precision.
func Round64(val float64, precision int) float64 {
	pwr := math.Pow(10, float64(precision))
	return math.Round(val*pwr) / pwr
}

// Float32ApproxEq determines whether two floating point numbers are close enough to each other
// by a threshold of 1e-5.
func Float32ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// Vec32ApproxEq reports whether every component of a and b is approximately equal.
func Vec32ApproxEq(a, b mgl32.Vec3) bool {
	return Float32ApproxEq(a[0], b[0]) && Float32ApproxEq(a[1], b[1]) && Float32ApproxEq(a[2], b[2])
}

// Vec32To64 converts a 32-bit vector to a 64-bit one.
func Vec32To64(vec3 mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(vec3[0]), float64(vec3[1]), float64(vec3[2])}
}

// Vec64To32 converts a 64-bit vector to a 32-bit one.
func Vec64To32(vec3 mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(vec3[0]), float32(vec3[1]), float32(vec3[2])}
}

// DirectionVector returns a direction vector from the given yaw and pitch values.
func DirectionVector(yaw, pitch float32) mgl32.Vec3 {
	yawRad, pitchRad := mgl32.DegToRad(yaw), mgl32.DegToRad(pitch)
	m := math32.Cos(pitchRad)

	return mgl32.Vec3{
		-m * math32.Sin(yawRad),
		-math32.Sin(pitchRad),
		m * math32.Cos(yawRad),
	}
}

// Returns -1 if x < y, 0 if x == y, or 1 if x > y
func PHPSpaceshipOp(x, y float32) float32 {
	if x < y {
		return -1
	} else if x == y {
		return 0
	}

	return 1
}
