package audio

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/sinshu/go-meltysynth/meltysynth"
	"go.uber.org/zap"
)

const sampleRate = 44100

var speakerInitialized bool

// Synth renders MIDI files through a SoundFont and plays them on the
// default audio device.
type Synth struct {
	soundFont *meltysynth.SoundFont
	log       *zap.Logger

	midiFile *meltysynth.MidiFile
	ctrl     *beep.Ctrl
	volume   *effects.Volume
}

// Verify Synth implements Backend at compile time.
var _ Backend = (*Synth)(nil)

// NewSynth loads the SoundFont and initializes the speaker. A missing or
// unparsable SoundFont is a construction error; the caller falls back to
// running the transport without a backend.
func NewSynth(soundFontPath string, log *zap.Logger) (*Synth, error) {
	data, err := os.ReadFile(soundFontPath)
	if err != nil {
		return nil, fmt.Errorf("read soundfont: %w", err)
	}

	sf, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse soundfont %s: %w", soundFontPath, err)
	}

	if !speakerInitialized {
		sr := beep.SampleRate(sampleRate)
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			return nil, fmt.Errorf("init speaker: %w", err)
		}
		speakerInitialized = true
	}

	log.Debug("soundfont loaded", zap.String("path", soundFontPath))
	return &Synth{soundFont: sf, log: log}, nil
}

func (s *Synth) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read midi file: %w", err)
	}

	mf, err := meltysynth.NewMidiFile(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse midi file %s: %w", path, err)
	}

	s.midiFile = mf
	return nil
}

func (s *Synth) Play() error {
	if s.midiFile == nil {
		return fmt.Errorf("no midi file loaded")
	}

	settings := meltysynth.NewSynthesizerSettings(sampleRate)
	synth, err := meltysynth.NewSynthesizer(s.soundFont, settings)
	if err != nil {
		return fmt.Errorf("create synthesizer: %w", err)
	}

	sequencer := meltysynth.NewMidiFileSequencer(synth)
	sequencer.Play(s.midiFile, false)

	// The sequencer renders silence past the end of the sequence; the
	// transport's auto-stop decides when playback is over.
	s.ctrl = &beep.Ctrl{Streamer: &synthStreamer{seq: sequencer}, Paused: false}
	s.volume = &effects.Volume{Streamer: s.ctrl, Base: 2, Volume: 0, Silent: false}

	speaker.Clear()
	speaker.Play(s.volume)
	return nil
}

func (s *Synth) Pause() {
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

func (s *Synth) Unpause() {
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

func (s *Synth) Stop() {
	speaker.Clear()
	s.ctrl = nil
	s.volume = nil
}

func (s *Synth) Close() error {
	s.Stop()
	s.midiFile = nil
	return nil
}

// synthStreamer adapts the meltysynth sequencer to a beep.Streamer.
type synthStreamer struct {
	seq   *meltysynth.MidiFileSequencer
	left  []float32
	right []float32
}

func (st *synthStreamer) Stream(samples [][2]float64) (int, bool) {
	n := len(samples)
	if cap(st.left) < n {
		st.left = make([]float32, n)
		st.right = make([]float32, n)
	}
	l, r := st.left[:n], st.right[:n]

	st.seq.Render(l, r)

	for i := range samples {
		samples[i][0] = float64(l[i])
		samples[i][1] = float64(r[i])
	}
	return n, true
}

func (st *synthStreamer) Err() error { return nil }
