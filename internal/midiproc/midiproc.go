// Package midiproc provides offline transforms over standard MIDI files:
// humanization, simple effects, channel-merging and event filtering. All
// transforms are pure rewrites of the event list; playback is not involved.
package midiproc

import (
	"fmt"
	"path/filepath"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// transformFile reads in, applies fn and writes the result to out.
func transformFile(in, out string, fn func(*smf.SMF) error) error {
	data, err := smf.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(in), err)
	}
	if err := fn(data); err != nil {
		return err
	}
	if err := data.WriteFile(out); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(out), err)
	}
	return nil
}

// ticksPerBeat returns the file resolution, or an error for SMPTE files.
func ticksPerBeat(data *smf.SMF) (int64, error) {
	ticks, ok := data.TimeFormat.(smf.MetricTicks)
	if !ok {
		return 0, fmt.Errorf("unsupported SMPTE time format")
	}
	return int64(ticks.Resolution()), nil
}

// withChannel rewrites the channel of a voice message, leaving every other
// message untouched.
func withChannel(msg smf.Message, channel uint8) smf.Message {
	var (
		ch, key, vel  uint8
		cc, val       uint8
		prog          uint8
		pressure      uint8
		rel           int16
		abs           uint16
	)
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		return smf.Message(midi.NoteOn(channel, key, vel))
	case msg.GetNoteOff(&ch, &key, &vel):
		return smf.Message(midi.NoteOffVelocity(channel, key, vel))
	case msg.GetControlChange(&ch, &cc, &val):
		return smf.Message(midi.ControlChange(channel, cc, val))
	case msg.GetProgramChange(&ch, &prog):
		return smf.Message(midi.ProgramChange(channel, prog))
	case msg.GetPitchBend(&ch, &rel, &abs):
		return smf.Message(midi.Pitchbend(channel, rel))
	case msg.GetPolyAfterTouch(&ch, &key, &pressure):
		return smf.Message(midi.PolyAfterTouch(channel, key, pressure))
	case msg.GetAfterTouch(&ch, &pressure):
		return smf.Message(midi.AfterTouch(channel, pressure))
	default:
		return msg
	}
}

func noteOn(ch, key, vel uint8) smf.Message {
	return smf.Message(midi.NoteOn(ch, key, vel))
}

func clampKey(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}

// clampVelocity keeps note-on velocities audible: the floor is 1, not 0,
// because velocity 0 would turn the note-on into a note-off.
func clampVelocity(v int) uint8 {
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
