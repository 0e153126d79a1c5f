package midisource

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// writeTestFile builds a single-track SMF at 480 PPQ and writes it to a
// temp file. events are (delta, message) pairs.
func writeTestFile(t *testing.T, events ...smf.Event) string {
	t.Helper()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var tr smf.Track
	for _, ev := range events {
		tr = append(tr, ev)
	}
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		t.Fatalf("add track: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.mid")
	if err := s.WriteFile(path); err != nil {
		t.Fatalf("write smf: %v", err)
	}
	return path
}

func event(delta uint32, msg midi.Message) smf.Event {
	return smf.Event{Delta: delta, Message: smf.Message(msg)}
}

func tempoEvent(delta uint32, bpm float64) smf.Event {
	return smf.Event{Delta: delta, Message: smf.MetaTempo(bpm)}
}

func TestLoad_BaseTempo_FirstEventWins(t *testing.T) {
	path := writeTestFile(t,
		tempoEvent(0, 90),
		event(480, midi.NoteOn(0, 60, 100)),
		tempoEvent(480, 180),
		event(480, midi.NoteOff(0, 60)),
	)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if f.BaseTempo() != 90 {
		t.Errorf("BaseTempo() = %v, want 90", f.BaseTempo())
	}
}

func TestLoad_NoTempoEvent_ReportsZero(t *testing.T) {
	path := writeTestFile(t,
		event(0, midi.NoteOn(0, 60, 100)),
		event(960, midi.NoteOff(0, 60)),
	)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if f.BaseTempo() != 0 {
		t.Errorf("BaseTempo() = %v, want 0 for file without tempo", f.BaseTempo())
	}
	// 960 ticks at 480 PPQ is 2 beats; the MIDI default of 120 BPM makes that 1s.
	if d := f.Duration(); !closeTo(d, time.Second) {
		t.Errorf("Duration() = %v, want ~1s", d)
	}
}

func TestLoad_NoteCount(t *testing.T) {
	path := writeTestFile(t,
		event(0, midi.NoteOn(0, 60, 100)),
		event(10, midi.NoteOn(0, 64, 100)),
		event(10, midi.NoteOn(0, 67, 0)), // velocity 0 is a note-off
		event(100, midi.NoteOff(0, 60)),
		event(0, midi.NoteOff(0, 64)),
	)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if f.NoteCount() != 2 {
		t.Errorf("NoteCount() = %d, want 2", f.NoteCount())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.mid"))
	if err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}

func TestIntegrate(t *testing.T) {
	const ppq = 480

	tests := []struct {
		name       string
		tempi      []tempoChange
		totalTicks int64
		want       time.Duration
	}{
		{
			name:       "no tempo events uses 120 default",
			totalTicks: 4 * ppq, // 4 beats
			want:       2 * time.Second,
		},
		{
			name:       "single tempo from start",
			tempi:      []tempoChange{{tick: 0, bpm: 60}},
			totalTicks: 2 * ppq,
			want:       2 * time.Second,
		},
		{
			name: "tempo change mid file",
			// 2 beats at 120 (1s), then 2 beats at 60 (2s)
			tempi:      []tempoChange{{tick: 0, bpm: 120}, {tick: 2 * ppq, bpm: 60}},
			totalTicks: 4 * ppq,
			want:       3 * time.Second,
		},
		{
			name:       "tempo event past the end is ignored",
			tempi:      []tempoChange{{tick: 0, bpm: 120}, {tick: 10 * ppq, bpm: 10}},
			totalTicks: 2 * ppq,
			want:       time.Second,
		},
		{
			name:       "empty file",
			totalTicks: 0,
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := integrate(tt.tempi, tt.totalTicks, ppq)
			if !closeTo(got, tt.want) {
				t.Errorf("integrate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mid", "a.midi", "notes.txt", "c.MID"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListDir(dir)
	if err != nil {
		t.Fatalf("ListDir() error: %v", err)
	}

	want := []string{"a.midi", "b.mid", "c.MID"}
	if len(files) != len(want) {
		t.Fatalf("ListDir() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func closeTo(got, want time.Duration) bool {
	return math.Abs(float64(got-want)) < float64(5*time.Millisecond)
}
