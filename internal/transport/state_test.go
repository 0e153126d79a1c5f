// internal/transport/state_test.go
package transport

import (
	"testing"
	"time"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Stopped, "Stopped"},
		{Playing, "Playing"},
		{Paused, "Paused"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_IsActive(t *testing.T) {
	if Stopped.IsActive() {
		t.Error("Stopped should not be active")
	}
	if !Playing.IsActive() {
		t.Error("Playing should be active")
	}
	if !Paused.IsActive() {
		t.Error("Paused should be active")
	}
}

func TestTransportState_State(t *testing.T) {
	var st transportState
	if st.state() != Stopped {
		t.Errorf("zero state = %v, want Stopped", st.state())
	}

	st.playing = true
	if st.state() != Playing {
		t.Errorf("playing state = %v, want Playing", st.state())
	}

	st.paused = true
	if st.state() != Paused {
		t.Errorf("paused state = %v, want Paused", st.state())
	}
}

func TestTempoRatio(t *testing.T) {
	tests := []struct {
		name     string
		original float64
		current  float64
		want     float64
	}{
		{"same tempo", 120, 120, 1},
		{"half tempo slows by 2", 120, 60, 2},
		{"double tempo speeds by 2", 120, 240, 0.5},
		{"zero current falls back to 1", 120, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := transportState{originalTempo: tt.original, currentTempo: tt.current}
			if got := st.tempoRatio(); got != tt.want {
				t.Errorf("tempoRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScaledDuration(t *testing.T) {
	st := transportState{originalTempo: 120, currentTempo: 60}
	if got := st.scaledDuration(10 * time.Second); got != 20*time.Second {
		t.Errorf("scaledDuration(10s) at half tempo = %v, want 20s", got)
	}

	st.currentTempo = 240
	if got := st.scaledDuration(10 * time.Second); got != 5*time.Second {
		t.Errorf("scaledDuration(10s) at double tempo = %v, want 5s", got)
	}
}

func TestStatus_Flags(t *testing.T) {
	if !(Status{State: Playing}).IsPlaying() {
		t.Error("Status{Playing}.IsPlaying() should be true")
	}
	if (Status{State: Paused}).IsPlaying() {
		t.Error("Status{Paused}.IsPlaying() should be false")
	}
	if !(Status{State: Paused}).IsPaused() {
		t.Error("Status{Paused}.IsPaused() should be true")
	}
}
