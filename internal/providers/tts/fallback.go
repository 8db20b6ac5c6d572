package tts

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mhagedorn/sprachtutor/internal/utils"
)

// Fallback tries one engine and falls back to the other. Either engine may
// be nil (not installed / not configured); when every attempt fails the
// result is an UNAVAILABLE error the orchestrator absorbs.
type Fallback struct {
	Offline       Synthesizer
	Online        Synthesizer
	PreferOffline bool
	Log           *logrus.Logger
}

func (f *Fallback) Name() string { return "fallback" }

func (f *Fallback) order() []Synthesizer {
	if f.PreferOffline {
		return []Synthesizer{f.Offline, f.Online}
	}
	return []Synthesizer{f.Online, f.Offline}
}

func (f *Fallback) Synthesize(ctx context.Context, text string, opts SynthesizeOpts) ([]byte, error) {
	const op = "tts.Fallback.Synthesize"

	var lastErr error
	for _, s := range f.order() {
		if s == nil {
			continue
		}
		data, err := s.Synthesize(ctx, text, opts)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if f.Log != nil {
			f.Log.WithError(err).WithField("engine", s.Name()).Warn("synthesis engine failed")
		}
	}
	return nil, utils.E(utils.CodeUnavailable, op, "no speech synthesis engine available", lastErr)
}

func (f *Fallback) Close() error {
	if f.Offline != nil {
		_ = f.Offline.Close()
	}
	if f.Online != nil {
		_ = f.Online.Close()
	}
	return nil
}
