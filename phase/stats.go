package phase

// Stats holds counters of everything a Machine did since it was created.
type Stats struct {
	Cycles uint64

	GhostEntries uint64
	LightEntries uint64
	Vetoed       uint64

	DebounceExits  uint64
	PathClearExits uint64
	Exited         uint64

	// Abandoned counts transitions dropped because the participant was already in the requested mode,
	// or left it to some other mode before the exit was applied.
	Abandoned uint64
	// Failures counts mode changes the host refused and panics recovered from.
	Failures uint64
	// Swept counts records removed for participants that disconnected or became invalid.
	Swept uint64
}
