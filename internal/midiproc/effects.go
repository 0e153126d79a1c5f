package midiproc

import (
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// EffectsOptions controls the effects transform. Zero values leave the
// corresponding dimension untouched.
type EffectsOptions struct {
	// Transpose shifts every note by this many semitones, clamped to the
	// MIDI key range.
	Transpose int
	// VelocityScale multiplies note-on velocities; 0 (or 1) is a no-op.
	VelocityScale float64
	// TimeStretch multiplies every delta time; 0 (or 1) is a no-op.
	// Values above 1 slow the file down, below 1 speed it up.
	TimeStretch float64
}

// Effects applies transpose, velocity scaling and time stretching to the
// tracks in place.
func Effects(data *smf.SMF, opts EffectsOptions) error {
	velocityScale := opts.VelocityScale
	if velocityScale == 0 {
		velocityScale = 1
	}
	timeStretch := opts.TimeStretch
	if timeStretch == 0 {
		timeStretch = 1
	}

	for i, track := range data.Tracks {
		rebuilt := make(smf.Track, 0, len(track))
		for _, ev := range track {
			msg := ev.Message
			delta := ev.Delta

			if timeStretch != 1 {
				delta = uint32(float64(delta) * timeStretch)
			}

			var ch, key, vel uint8
			switch {
			case msg.GetNoteOn(&ch, &key, &vel) && vel > 0:
				key = clampKey(int(key) + opts.Transpose)
				vel = clampVelocity(int(float64(vel) * velocityScale))
				msg = noteOn(ch, key, vel)
			case msg.GetNoteOn(&ch, &key, &vel):
				msg = noteOn(ch, clampKey(int(key)+opts.Transpose), 0)
			case msg.GetNoteOff(&ch, &key, &vel):
				key = clampKey(int(key) + opts.Transpose)
				msg = smf.Message(midi.NoteOffVelocity(ch, key, vel))
			}

			rebuilt = append(rebuilt, smf.Event{Delta: delta, Message: msg})
		}
		data.Tracks[i] = rebuilt
	}
	return nil
}

// EffectsFile applies Effects to the file at in and writes the result
// to out.
func EffectsFile(in, out string, opts EffectsOptions) error {
	return transformFile(in, out, func(data *smf.SMF) error {
		return Effects(data, opts)
	})
}
