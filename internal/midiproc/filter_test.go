package midiproc

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func TestStripControlChange_RemovesController(t *testing.T) {
	data := makeSMF(
		event(0, midi.NoteOn(0, 60, 100)),
		event(100, midi.ControlChange(0, 64, 127)), // sustain down
		event(100, midi.ControlChange(0, 64, 0)),   // sustain up
		event(40, midi.NoteOffVelocity(0, 60, 0)),
	)

	if err := StripControlChange(data, 64); err != nil {
		t.Fatalf("StripControlChange() error: %v", err)
	}

	for _, ev := range data.Tracks[0] {
		var ch, cc, val uint8
		if ev.Message.GetControlChange(&ch, &cc, &val) && cc == 64 {
			t.Fatal("sustain events should be gone")
		}
	}
}

func TestStripControlChange_PreservesTiming(t *testing.T) {
	data := makeSMF(
		event(0, midi.NoteOn(0, 60, 100)),
		event(100, midi.ControlChange(0, 64, 127)),
		event(140, midi.NoteOffVelocity(0, 60, 0)),
	)

	if err := StripControlChange(data, 64); err != nil {
		t.Fatalf("StripControlChange() error: %v", err)
	}

	// The dropped CC at tick 100 donates its delta: the note-off stays at
	// absolute tick 240.
	got := absTimes(data)
	if got[1] != 240 {
		t.Errorf("note-off at tick %d, want 240", got[1])
	}
}

func TestStripControlChange_KeepsOtherControllers(t *testing.T) {
	data := makeSMF(
		event(0, midi.ControlChange(0, 7, 100)), // volume
		event(10, midi.ControlChange(0, 64, 127)),
		event(10, midi.NoteOn(0, 60, 100)),
		event(240, midi.NoteOffVelocity(0, 60, 0)),
	)

	if err := StripControlChange(data, 64); err != nil {
		t.Fatalf("StripControlChange() error: %v", err)
	}

	var sawVolume bool
	for _, ev := range data.Tracks[0] {
		var ch, cc, val uint8
		if ev.Message.GetControlChange(&ch, &cc, &val) && cc == 7 {
			sawVolume = true
		}
	}
	if !sawVolume {
		t.Error("volume controller should survive a sustain strip")
	}
}

func TestFilterPitchRange_DropsOutOfRangeNotes(t *testing.T) {
	data := makeSMF(
		event(0, midi.NoteOn(0, 30, 100)),
		event(120, midi.NoteOffVelocity(0, 30, 0)),
		event(0, midi.NoteOn(0, 60, 100)),
		event(120, midi.NoteOffVelocity(0, 60, 0)),
		event(0, midi.NoteOn(0, 100, 100)),
		event(120, midi.NoteOffVelocity(0, 100, 0)),
	)

	if err := FilterPitchRange(data, 48, 84); err != nil {
		t.Fatalf("FilterPitchRange() error: %v", err)
	}

	notes := noteEvents(t, data)
	if len(notes) != 1 || notes[0][0] != 60 {
		t.Errorf("notes = %v, want only key 60", notes)
	}
}

func TestFilterPitchRange_PreservesTiming(t *testing.T) {
	data := makeSMF(
		event(0, midi.NoteOn(0, 30, 100)),
		event(120, midi.NoteOffVelocity(0, 30, 0)),
		event(120, midi.NoteOn(0, 60, 100)),
		event(120, midi.NoteOffVelocity(0, 60, 0)),
	)

	if err := FilterPitchRange(data, 48, 84); err != nil {
		t.Fatalf("FilterPitchRange() error: %v", err)
	}

	// Both key-30 events drop; their deltas carry so the surviving note-on
	// still lands at absolute tick 240.
	got := absTimes(data)
	if got[0] != 240 {
		t.Errorf("surviving note-on at tick %d, want 240", got[0])
	}
}

func TestFilterPitchRangeFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	in, out := dir+"/in.mid", dir+"/out.mid"

	data := makeSMF(
		event(0, midi.NoteOn(0, 60, 100)),
		event(240, midi.NoteOffVelocity(0, 60, 0)),
	)
	if err := data.WriteFile(in); err != nil {
		t.Fatal(err)
	}

	if err := FilterPitchRangeFile(in, out, 0, 127); err != nil {
		t.Fatalf("FilterPitchRangeFile() error: %v", err)
	}
}
