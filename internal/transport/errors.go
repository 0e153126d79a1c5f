package transport

import (
	"errors"
	"fmt"
)

// Sentinel errors for state-machine and argument violations. They are
// non-fatal by design: callers branch on them without tearing down the
// player. Pause, Resume and Stop report their forbidden-state cases as a
// false return instead, so those have no sentinel.
var (
	// ErrNoSourceLoaded is returned by commands that need an active source.
	ErrNoSourceLoaded = errors.New("no source loaded")

	// ErrAlreadyPlaying is returned by Play while playback is active;
	// the caller must Stop first, there is no implicit interrupt.
	ErrAlreadyPlaying = errors.New("already playing, stop first")

	// ErrInvalidTempo is returned by SetTempo for a non-positive BPM.
	ErrInvalidTempo = errors.New("tempo must be positive")

	// ErrOutOfRange is returned by Seek for a position outside
	// [0, scaled duration].
	ErrOutOfRange = errors.New("position out of range")
)

// SourceError wraps a failure to read or parse a source file.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
