package stt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestWhisperTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/asr" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("language") != "de" {
			t.Errorf("language = %q", q.Get("language"))
		}
		if q.Get("temperature") != "0" {
			t.Errorf("temperature = %q", q.Get("temperature"))
		}
		if q.Get("beam_size") != "2" {
			t.Errorf("beam_size = %q", q.Get("beam_size"))
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not multipart: %v", err)
		}
		f, _, err := r.FormFile("audio_file")
		if err != nil {
			t.Fatalf("missing audio_file: %v", err)
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		if string(body) != "fake-wav" {
			t.Errorf("audio body = %q", body)
		}

		_, _ = w.Write([]byte(`{"text": " Hallo Welt ", "language": "de"}`))
	}))
	defer srv.Close()

	w := NewWhisperServer(srv.URL, WhisperOptions{BeamSize: 2}, quietLogger())
	text, conf, err := w.Transcribe(context.Background(), []byte("fake-wav"), "de-DE")
	if err != nil {
		t.Fatal(err)
	}
	if text != "Hallo Welt" {
		t.Fatalf("text = %q", text)
	}
	if conf != 0 {
		t.Fatalf("confidence = %v", conf)
	}
}

func TestWhisperEmptyResultIsNoSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": "  "}`))
	}))
	defer srv.Close()

	w := NewWhisperServer(srv.URL, WhisperOptions{}, quietLogger())
	text, _, err := w.Transcribe(context.Background(), []byte("fake-wav"), "de")
	if err != nil {
		t.Fatal(err)
	}
	if !IsNoSpeech(text) {
		t.Fatalf("text = %q, want no-speech sentinel", text)
	}
}

func TestWhisperEngineFailureIsSoft(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model loading", http.StatusInternalServerError)
		}))
		defer srv.Close()

		w := NewWhisperServer(srv.URL, WhisperOptions{}, quietLogger())
		text, _, err := w.Transcribe(context.Background(), []byte("fake-wav"), "de")
		if err != nil {
			t.Fatalf("engine failure must be soft, got %v", err)
		}
		if !IsNoSpeech(text) {
			t.Fatalf("text = %q", text)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		w := NewWhisperServer(srv.URL, WhisperOptions{}, quietLogger())
		text, _, err := w.Transcribe(context.Background(), []byte("fake-wav"), "de")
		if err != nil {
			t.Fatalf("engine failure must be soft, got %v", err)
		}
		if !IsNoSpeech(text) {
			t.Fatalf("text = %q", text)
		}
	})
}

func TestWhisperEmptyClip(t *testing.T) {
	w := NewWhisperServer("http://localhost:9", WhisperOptions{}, quietLogger())
	text, _, err := w.Transcribe(context.Background(), nil, "de")
	if err != nil {
		t.Fatal(err)
	}
	if !IsNoSpeech(text) {
		t.Fatalf("text = %q", text)
	}
}

func TestIsNoSpeech(t *testing.T) {
	for _, s := range []string{"", "  ", NoSpeech, " " + NoSpeech + " "} {
		if !IsNoSpeech(s) {
			t.Errorf("IsNoSpeech(%q) = false", s)
		}
	}
	if IsNoSpeech("Hallo") {
		t.Error("IsNoSpeech(Hallo) = true")
	}
}

func TestShortLanguage(t *testing.T) {
	cases := map[string]string{
		"de-DE": "de",
		"de":    "de",
		"EN_us": "en",
		"":      "",
	}
	for in, want := range cases {
		if got := shortLanguage(in); got != want {
			t.Errorf("shortLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
