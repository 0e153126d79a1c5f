package transport

import "time"

// StateChange is emitted when the transport state changes, whether from a
// controller command or from the tracker's end-of-track auto-stop.
type StateChange struct {
	Previous State
	Current  State
}

// SourceChange is emitted when a new source is loaded.
type SourceChange struct {
	Name     string
	Duration time.Duration // authored duration, before tempo scaling
	Tempo    float64       // detected base tempo in BPM
}

// PositionChange is emitted on tracker ticks and explicit seeks.
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted for best-effort failures, currently only from the
// audio backend. The operation that triggered it still succeeds.
type ErrorEvent struct {
	Operation string // e.g. "load", "play"
	Err       error
}
