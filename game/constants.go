package game

const (
	// TicksPerSecond is the amount of simulation ticks the host world runs every second.
	TicksPerSecond = 20
	// SpeedScale converts a velocity in blocks per tick to a speed in blocks per second.
	SpeedScale = float64(TicksPerSecond)

	// EyeHeight is the height of a standing player's view origin above its feet.
	EyeHeight = 1.62
)
