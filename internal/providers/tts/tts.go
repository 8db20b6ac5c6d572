// Package tts converts tutor replies to speech. Two interchangeable engines
// exist: an offline one driving a local binary and a networked one. The
// Fallback composite tries them in configured order; a synthesis failure is
// always recoverable for the caller.
package tts

import "context"

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the ISO-639-1 code (e.g. "de") used for voice selection.
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to WAV audio bytes.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) ([]byte, error)
	Close() error
}
