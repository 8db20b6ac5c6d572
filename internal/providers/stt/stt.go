package stt

import (
	"context"
	"strings"
)

// NoSpeech is the sentinel returned when the engine ran but recognized no
// usable speech. Callers treat it exactly like an empty transcript.
const NoSpeech = "[no speech detected]"

func IsNoSpeech(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || t == NoSpeech
}

type Provider interface {
	// Transcribe converts audio bytes to text. A nil error with an empty or
	// NoSpeech text means the engine ran but heard nothing; a non-nil error
	// means the engine itself failed.
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}
