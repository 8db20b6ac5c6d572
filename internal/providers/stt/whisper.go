package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// WhisperOptions are the decode settings forwarded to the server. The
// defaults mirror fast greedy decoding tuned for short clips.
type WhisperOptions struct {
	Temperature       float64
	BeamSize          int
	NoSpeechThreshold float64
	Timeout           time.Duration
}

// WhisperServer talks to a local whisper inference server over HTTP.
//
// Engine failures (unreachable server, bad payload, empty result) are
// reported as the NoSpeech sentinel, not as errors: a broken local engine
// should read as "nothing recognized", and only the caller decides whether
// that aborts the request.
type WhisperServer struct {
	baseURL string
	opts    WhisperOptions
	httpc   *http.Client
	log     *logrus.Logger
}

func NewWhisperServer(baseURL string, opts WhisperOptions, log *logrus.Logger) *WhisperServer {
	if baseURL == "" {
		baseURL = "http://localhost:9000"
	}
	if opts.BeamSize <= 0 {
		opts.BeamSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.New()
	}
	return &WhisperServer{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		httpc:   &http.Client{Timeout: opts.Timeout},
		log:     log,
	}
}

func (w *WhisperServer) Close() error { return nil }

func (w *WhisperServer) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	if len(audio) == 0 {
		return NoSpeech, 0, nil
	}

	text, err := w.ask(ctx, audio, language)
	if err != nil {
		w.log.WithError(err).Warn("whisper transcription failed")
		return NoSpeech, 0, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return NoSpeech, 0, nil
	}
	// The server reports no per-utterance confidence.
	return text, 0, nil
}

func (w *WhisperServer) ask(ctx context.Context, audio []byte, language string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio_file", "clip.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("task", "transcribe")
	q.Set("output", "json")
	if language != "" {
		q.Set("language", shortLanguage(language))
	}
	q.Set("temperature", strconv.FormatFloat(w.opts.Temperature, 'f', -1, 64))
	q.Set("beam_size", strconv.Itoa(w.opts.BeamSize))
	q.Set("no_speech_threshold", strconv.FormatFloat(w.opts.NoSpeechThreshold, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/asr?"+q.Encode(), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("whisper server status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode whisper response: %w", err)
	}
	return out.Text, nil
}

// shortLanguage reduces a locale like "de-DE" to the ISO-639-1 code whisper
// expects.
func shortLanguage(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, "-_"); i > 0 {
		return strings.ToLower(v[:i])
	}
	return strings.ToLower(v)
}
