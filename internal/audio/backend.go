// Package audio provides the playback backend consumed by the transport
// controller. The controller treats every call as best-effort: a backend
// error degrades playback to silent tracking, it never aborts the transport.
package audio

// Backend is the audio engine contract.
type Backend interface {
	// Load prepares a MIDI file for playback.
	Load(path string) error
	// Play starts audio output from the beginning of the loaded file.
	Play() error
	Pause()
	Unpause()
	Stop()
	Close() error
}
