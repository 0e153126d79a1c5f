// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Source operations
	OpSourceLoad Op = "load MIDI file"
	OpSourceList Op = "list MIDI files"

	// Transport operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
	OpTempoSet      Op = "set tempo"

	// Audio operations
	OpAudioInit Op = "initialize audio output"

	// Processing operations
	OpHumanize Op = "humanize MIDI file"
	OpEffects  Op = "apply MIDI effects"
	OpCombine  Op = "combine MIDI files"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
