package tts

import (
	"context"
	"errors"
	"io"
	"net"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mhagedorn/sprachtutor/internal/utils"
)

// OpenAISpeech is the networked engine, using the hosted speech API with WAV
// output.
type OpenAISpeech struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

func NewOpenAISpeech(apiKey, voice string) *OpenAISpeech {
	v := openai.VoiceAlloy
	if voice != "" {
		v = openai.SpeechVoice(voice)
	}
	return &OpenAISpeech{
		client: openai.NewClient(apiKey),
		model:  openai.TTSModel1,
		voice:  v,
	}
}

func (s *OpenAISpeech) Name() string { return "openai" }

func (s *OpenAISpeech) Close() error { return nil }

func (s *OpenAISpeech) Synthesize(ctx context.Context, text string, opts SynthesizeOpts) ([]byte, error) {
	const op = "tts.OpenAISpeech.Synthesize"

	voice := s.voice
	if opts.Voice != "" {
		voice = openai.SpeechVoice(opts.Voice)
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		if isTimeout(err) {
			return nil, utils.E(utils.CodeTimeout, op, "synthesis request timed out", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "cannot reach synthesis engine", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, utils.E(utils.CodeProtocol, op, "failed to read synthesized audio", err)
	}
	if len(data) == 0 {
		return nil, utils.E(utils.CodeProtocol, op, "engine returned no audio", nil)
	}
	return data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
