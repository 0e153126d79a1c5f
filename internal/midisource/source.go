// Package midisource loads standard MIDI files and exposes the timing
// information the transport needs: total duration and the authored tempo.
package midisource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"
)

// File is a loaded standard MIDI file.
type File struct {
	path      string
	data      *smf.SMF
	duration  time.Duration
	baseTempo float64
	noteCount int
}

// Load reads and parses a standard MIDI file.
func Load(path string) (*File, error) {
	data, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	ticks, ok := data.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported SMPTE time format", filepath.Base(path))
	}

	f := &File{path: path, data: data}
	f.analyze(ticks)
	return f, nil
}

// tempoChange is a tempo event at an absolute tick.
type tempoChange struct {
	tick int64
	bpm  float64
}

// analyze walks all tracks once, collecting the tempo map, the total length
// in ticks and the note count, then integrates the tempo map into seconds.
func (f *File) analyze(ticks smf.MetricTicks) {
	var (
		tempi      []tempoChange
		totalTicks int64
	)

	for _, track := range f.data.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)

			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				tempi = append(tempi, tempoChange{tick: abs, bpm: bpm})
				continue
			}

			var ch, key, vel uint8
			if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				f.noteCount++
			}
		}
		if abs > totalTicks {
			totalTicks = abs
		}
	}

	sort.SliceStable(tempi, func(i, j int) bool { return tempi[i].tick < tempi[j].tick })

	if len(tempi) > 0 {
		f.baseTempo = tempi[0].bpm
	}

	f.duration = integrate(tempi, totalTicks, int64(ticks.Resolution()))
}

// integrate converts a tick count to wall time by summing the tempo segments.
// Ticks before the first tempo event (and files with no tempo event at all)
// run at the MIDI default of 120 BPM.
func integrate(tempi []tempoChange, totalTicks, ppq int64) time.Duration {
	const defaultBPM = 120.0

	if ppq <= 0 || totalTicks <= 0 {
		return 0
	}

	var (
		seconds  float64
		lastTick int64
		lastBPM  = defaultBPM
	)
	for _, tc := range tempi {
		if tc.tick >= totalTicks {
			break
		}
		seconds += ticksToSeconds(tc.tick-lastTick, ppq, lastBPM)
		lastTick = tc.tick
		lastBPM = tc.bpm
	}
	seconds += ticksToSeconds(totalTicks-lastTick, ppq, lastBPM)

	return time.Duration(seconds * float64(time.Second))
}

func ticksToSeconds(ticks, ppq int64, bpm float64) float64 {
	if ticks <= 0 || bpm <= 0 {
		return 0
	}
	return float64(ticks) / float64(ppq) * 60.0 / bpm
}

func (f *File) Duration() time.Duration { return f.duration }

func (f *File) BaseTempo() float64 { return f.baseTempo }

func (f *File) Name() string { return filepath.Base(f.path) }

func (f *File) Path() string { return f.path }

// NoteCount returns the number of note-on events in the file.
func (f *File) NoteCount() int { return f.noteCount }

// SMF exposes the parsed file for processing transforms.
func (f *File) SMF() *smf.SMF { return f.data }

// ListDir returns the MIDI files in dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".mid" || ext == ".midi" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
