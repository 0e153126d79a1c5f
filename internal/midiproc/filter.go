package midiproc

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

// StripControlChange removes every event for the given controller number,
// preserving the timing of the remaining events. The classic use is
// dropping CC64 sustain-pedal data from piano captures.
func StripControlChange(data *smf.SMF, controller uint8) error {
	for i, track := range data.Tracks {
		rebuilt := make(smf.Track, 0, len(track))
		var carry uint32
		for _, ev := range track {
			var ch, cc, val uint8
			if ev.Message.GetControlChange(&ch, &cc, &val) && cc == controller {
				// Dropped events donate their delta to the next survivor.
				carry += ev.Delta
				continue
			}
			rebuilt = append(rebuilt, smf.Event{Delta: ev.Delta + carry, Message: ev.Message})
			carry = 0
		}
		data.Tracks[i] = rebuilt
	}
	return nil
}

// StripControlChangeFile applies StripControlChange to the file at in and
// writes the result to out.
func StripControlChangeFile(in, out string, controller uint8) error {
	return transformFile(in, out, func(data *smf.SMF) error {
		return StripControlChange(data, controller)
	})
}

// FilterPitchRange removes note events outside [low, high], preserving the
// timing of the remaining events.
func FilterPitchRange(data *smf.SMF, low, high uint8) error {
	for i, track := range data.Tracks {
		rebuilt := make(smf.Track, 0, len(track))
		var carry uint32
		for _, ev := range track {
			var ch, key, vel uint8
			isNote := ev.Message.GetNoteOn(&ch, &key, &vel) || ev.Message.GetNoteOff(&ch, &key, &vel)
			if isNote && (key < low || key > high) {
				carry += ev.Delta
				continue
			}
			rebuilt = append(rebuilt, smf.Event{Delta: ev.Delta + carry, Message: ev.Message})
			carry = 0
		}
		data.Tracks[i] = rebuilt
	}
	return nil
}

// FilterPitchRangeFile applies FilterPitchRange to the file at in and
// writes the result to out.
func FilterPitchRangeFile(in, out string, low, high uint8) error {
	return transformFile(in, out, func(data *smf.SMF) error {
		return FilterPitchRange(data, low, high)
	})
}
