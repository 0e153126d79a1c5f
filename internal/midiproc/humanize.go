package midiproc

import (
	"math/rand/v2"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"
)

// humanizeReferenceBPM anchors the jitter-to-ticks conversion so the same
// millisecond jitter produces the same tick spread regardless of the file's
// tempo map.
const humanizeReferenceBPM = 120

// HumanizeOptions controls the humanization transform.
type HumanizeOptions struct {
	// TimingJitter is the maximum amount a note is shifted in either
	// direction, expressed in time at the 120 BPM reference.
	TimingJitter time.Duration
	// VelocityJitter is the maximum velocity offset in either direction,
	// applied to note-on events only.
	VelocityJitter uint8
	// Swing delays every other eighth note by this fraction of a beat.
	Swing float64

	// Rand supplies randomness; nil uses the global source.
	Rand *rand.Rand
}

// DefaultHumanizeOptions are gentle settings that keep the groove intact.
func DefaultHumanizeOptions() HumanizeOptions {
	return HumanizeOptions{
		TimingJitter:   10 * time.Millisecond,
		VelocityJitter: 8,
		Swing:          0.1,
	}
}

func (o HumanizeOptions) intn(n int) int {
	if n <= 0 {
		return 0
	}
	if o.Rand != nil {
		return o.Rand.IntN(n)
	}
	return rand.IntN(n)
}

// jitter returns a uniform value in [-max, max].
func (o HumanizeOptions) jitter(max int) int {
	if max <= 0 {
		return 0
	}
	return o.intn(2*max+1) - max
}

// Humanize adds timing and velocity jitter plus swing to every note event,
// rewriting the tracks in place.
func Humanize(data *smf.SMF, opts HumanizeOptions) error {
	ppq, err := ticksPerBeat(data)
	if err != nil {
		return err
	}

	// ms * ppq / (60000 / referenceBPM) ticks of maximum displacement.
	beatMillis := 60_000.0 / humanizeReferenceBPM
	jitterTicks := int(float64(opts.TimingJitter.Milliseconds()) * float64(ppq) / beatMillis)
	eighth := ppq / 2

	for i, track := range data.Tracks {
		rebuilt := make(smf.Track, 0, len(track))
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)
			msg := ev.Message
			delta := int64(ev.Delta)

			var ch, key, vel uint8
			switch {
			case msg.GetNoteOn(&ch, &key, &vel) && vel > 0:
				delta += int64(opts.jitter(jitterTicks))
				if opts.VelocityJitter > 0 {
					v := int(vel) + opts.jitter(int(opts.VelocityJitter))
					msg = noteOn(ch, key, clampVelocity(v))
				}
			case msg.GetNoteOff(&ch, &key, &vel) || msg.GetNoteOn(&ch, &key, &vel):
				delta += int64(opts.jitter(jitterTicks))
			default:
				rebuilt = append(rebuilt, ev)
				continue
			}

			// Swing: every other eighth-note slot lands late.
			if opts.Swing > 0 && eighth > 0 && (abs/eighth)%2 == 1 {
				delta += int64(opts.Swing * float64(ppq))
			}

			if delta < 0 {
				delta = 0
			}
			rebuilt = append(rebuilt, smf.Event{Delta: uint32(delta), Message: msg})
		}
		data.Tracks[i] = rebuilt
	}
	return nil
}

// HumanizeFile applies Humanize to the file at in and writes the result
// to out.
func HumanizeFile(in, out string, opts HumanizeOptions) error {
	return transformFile(in, out, func(data *smf.SMF) error {
		return Humanize(data, opts)
	})
}
