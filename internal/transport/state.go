// internal/transport/state.go
package transport

import "time"

// State represents the transport state machine.
//
// Valid transitions:
//   - Stopped → Playing (via Play)
//   - Playing → Paused  (via Pause)
//   - Playing → Stopped (via Stop, or auto-stop at end of track)
//   - Paused  → Playing (via Resume)
//   - Paused  → Stopped (via Stop)
//
// Invalid/No-op transitions (handled gracefully):
//   - Stopped → Paused  (Pause returns false)
//   - Stopped → Stopped (Stop returns false)
//   - Paused  → Paused  (Pause returns false)
//   - Playing → Playing (Play fails with ErrAlreadyPlaying, caller must Stop)
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// transportState is the mutable playback record shared between the
// controller and the position tracker. Every field is guarded by the
// controller's mutex; the whole record is mutated as a unit so the tracker
// never observes a half-applied transition.
type transportState struct {
	originalTempo float64 // BPM detected from the source, fixed per load
	currentTempo  float64 // user-requested playback BPM, always > 0

	playing bool
	paused  bool // only meaningful while playing

	// refStart is the wall-clock instant such that now - refStart equals
	// the current playback position. Recomputed on every play, resume and
	// seek; shifting it by the pause duration is what keeps the position
	// continuous across pause/resume cycles.
	refStart time.Time
	pausedAt time.Time // instant pause began, valid only while paused

	position time.Duration
	silent   bool // audio output unavailable, tracking only
}

func (s *transportState) state() State {
	switch {
	case s.playing && s.paused:
		return Paused
	case s.playing:
		return Playing
	default:
		return Stopped
	}
}

// tempoRatio scales source time to wall-clock playback time. Above 1 the
// playback is slower than authored, below 1 it is faster.
func (s *transportState) tempoRatio() float64 {
	if s.currentTempo <= 0 {
		return 1
	}
	return s.originalTempo / s.currentTempo
}

// scaledDuration converts the source's authored duration to wall-clock
// playback length at the current tempo.
func (s *transportState) scaledDuration(sourceDuration time.Duration) time.Duration {
	return time.Duration(float64(sourceDuration) * s.tempoRatio())
}

// Status is an immutable snapshot of the transport state.
type Status struct {
	State         State
	Position      time.Duration
	CurrentTempo  float64
	OriginalTempo float64
	Duration      time.Duration // scaled to the current tempo
	SourceLoaded  bool
	SourceName    string
	Silent        bool
}

// IsPlaying reports whether playback is active and not paused.
func (st Status) IsPlaying() bool { return st.State == Playing }

// IsPaused reports whether playback is active and paused.
func (st Status) IsPaused() bool { return st.State == Paused }
