package stt

import (
	"bytes"
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIWhisper transcribes through the hosted whisper API.
type OpenAIWhisper struct {
	client *openai.Client
	model  string
}

func NewOpenAIWhisper(apiKey, model string) *OpenAIWhisper {
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIWhisper{client: openai.NewClient(apiKey), model: model}
}

func (o *OpenAIWhisper) Close() error { return nil }

func (o *OpenAIWhisper) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: "clip.wav",
		Reader:   bytes.NewReader(audio),
		Language: shortLanguage(language),
	})
	if err != nil {
		return "", 0, err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return NoSpeech, 0, nil
	}
	// The transcription endpoint does not report confidence.
	return text, 0, nil
}
