package midiproc

import (
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// SetProgram switches the instrument of a channel by rewriting its program
// change events to the given program. A channel with no program change gets
// one inserted at the start of the first track, so the swap also works on
// files that rely on the default instrument.
func SetProgram(data *smf.SMF, channel, program uint8) error {
	var found bool

	for i, track := range data.Tracks {
		rebuilt := make(smf.Track, 0, len(track))
		for _, ev := range track {
			var ch, prog uint8
			if ev.Message.GetProgramChange(&ch, &prog) && ch == channel {
				found = true
				rebuilt = append(rebuilt, smf.Event{
					Delta:   ev.Delta,
					Message: smf.Message(midi.ProgramChange(channel, program)),
				})
				continue
			}
			rebuilt = append(rebuilt, ev)
		}
		data.Tracks[i] = rebuilt
	}

	if !found && len(data.Tracks) > 0 {
		first := data.Tracks[0]
		track := make(smf.Track, 0, len(first)+1)
		track = append(track, smf.Event{Message: smf.Message(midi.ProgramChange(channel, program))})
		track = append(track, first...)
		data.Tracks[0] = track
	}
	return nil
}

// SetProgramFile applies SetProgram to the file at in and writes the result
// to out.
func SetProgramFile(in, out string, channel, program uint8) error {
	return transformFile(in, out, func(data *smf.SMF) error {
		return SetProgram(data, channel, program)
	})
}
