package tts

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/mhagedorn/sprachtutor/internal/utils"
)

type fakeSynth struct {
	name  string
	data  []byte
	err   error
	calls *[]string
}

func (f *fakeSynth) Name() string { return f.name }
func (f *fakeSynth) Synthesize(context.Context, string, SynthesizeOpts) ([]byte, error) {
	*f.calls = append(*f.calls, f.name)
	return f.data, f.err
}
func (f *fakeSynth) Close() error { return nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFallbackPrefersOffline(t *testing.T) {
	var calls []string
	fb := &Fallback{
		Offline:       &fakeSynth{name: "offline", data: []byte("wav"), calls: &calls},
		Online:        &fakeSynth{name: "online", data: []byte("wav"), calls: &calls},
		PreferOffline: true,
		Log:           quietLogger(),
	}

	data, err := fb.Synthesize(context.Background(), "Hallo", SynthesizeOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("no audio returned")
	}
	if len(calls) != 1 || calls[0] != "offline" {
		t.Fatalf("calls = %v, want just offline", calls)
	}
}

func TestFallbackFallsThroughToOnline(t *testing.T) {
	var calls []string
	fb := &Fallback{
		Offline:       &fakeSynth{name: "offline", err: errors.New("engine gone"), calls: &calls},
		Online:        &fakeSynth{name: "online", data: []byte("wav"), calls: &calls},
		PreferOffline: true,
		Log:           quietLogger(),
	}

	if _, err := fb.Synthesize(context.Background(), "Hallo", SynthesizeOpts{}); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != "offline" || calls[1] != "online" {
		t.Fatalf("calls = %v, want offline then online", calls)
	}
}

func TestFallbackOnlineFirstWhenNotPreferringOffline(t *testing.T) {
	var calls []string
	fb := &Fallback{
		Offline: &fakeSynth{name: "offline", data: []byte("wav"), calls: &calls},
		Online:  &fakeSynth{name: "online", data: []byte("wav"), calls: &calls},
		Log:     quietLogger(),
	}

	if _, err := fb.Synthesize(context.Background(), "Hallo", SynthesizeOpts{}); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 || calls[0] != "online" {
		t.Fatalf("calls = %v, want just online", calls)
	}
}

func TestFallbackAllEnginesFailing(t *testing.T) {
	var calls []string
	fb := &Fallback{
		Offline:       &fakeSynth{name: "offline", err: errors.New("gone"), calls: &calls},
		Online:        &fakeSynth{name: "online", err: errors.New("also gone"), calls: &calls},
		PreferOffline: true,
		Log:           quietLogger(),
	}

	_, err := fb.Synthesize(context.Background(), "Hallo", SynthesizeOpts{})
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("expected UNAVAILABLE, got %v", err)
	}
}

func TestFallbackSkipsMissingEngines(t *testing.T) {
	var calls []string
	fb := &Fallback{
		Online:        &fakeSynth{name: "online", data: []byte("wav"), calls: &calls},
		PreferOffline: true,
		Log:           quietLogger(),
	}

	if _, err := fb.Synthesize(context.Background(), "Hallo", SynthesizeOpts{}); err != nil {
		t.Fatal(err)
	}

	fb = &Fallback{PreferOffline: true, Log: quietLogger()}
	_, err := fb.Synthesize(context.Background(), "Hallo", SynthesizeOpts{})
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("expected UNAVAILABLE with no engines, got %v", err)
	}
}
