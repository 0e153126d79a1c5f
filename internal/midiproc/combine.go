package midiproc

import (
	"fmt"
	"path/filepath"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Combine merges the tracks of several MIDI files into one file, assigning
// each input file its own channel. channels supplies explicit channel
// numbers per input; inputs beyond its length (or a nil slice) are assigned
// round-robin over the 16 MIDI channels.
func Combine(paths []string, out string, channels []uint8) error {
	if len(paths) == 0 {
		return fmt.Errorf("no input files")
	}

	var combined *smf.SMF

	for i, path := range paths {
		data, err := smf.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}

		if combined == nil {
			combined = smf.New()
			combined.TimeFormat = data.TimeFormat
		}

		channel := uint8(i % 16)
		if i < len(channels) {
			channel = channels[i] % 16
		}

		for _, track := range data.Tracks {
			rebuilt := make(smf.Track, 0, len(track))
			for _, ev := range track {
				rebuilt = append(rebuilt, smf.Event{
					Delta:   ev.Delta,
					Message: withChannel(ev.Message, channel),
				})
			}
			if err := combined.Add(rebuilt); err != nil {
				return fmt.Errorf("merge %s: %w", filepath.Base(path), err)
			}
		}
	}

	if err := combined.WriteFile(out); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(out), err)
	}
	return nil
}
