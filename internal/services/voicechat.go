package services

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mhagedorn/sprachtutor/internal/models"
	"github.com/mhagedorn/sprachtutor/internal/providers/llm"
	"github.com/mhagedorn/sprachtutor/internal/providers/stt"
	"github.com/mhagedorn/sprachtutor/internal/providers/tts"
	"github.com/mhagedorn/sprachtutor/internal/storage"
	"github.com/mhagedorn/sprachtutor/internal/utils"
)

// ChatResult is the assembled response for one voice exchange. TTSURL is nil
// when synthesis failed; every other field is always populated.
type ChatResult struct {
	UserText  string
	ReplyText string
	TTSFile   *string
	TTSURL    *string
	Topic     string
}

type VoiceChatService interface {
	Chat(ctx context.Context, audio io.Reader, topic string) (*ChatResult, error)
}

// VoiceChatParams wires the orchestrator. Archive and Now are optional;
// Now defaults to time.Now and exists so tests can pin the reply filename.
type VoiceChatParams struct {
	STT           stt.Provider
	LLM           llm.Provider
	TTS           tts.Synthesizer
	Store         storage.Uploader
	Archive       storage.Uploader
	Conversations ConversationService
	Logger        *logrus.Logger

	Language        string
	SystemPrompt    string
	ScratchDir      string
	GenerateTimeout time.Duration
	SynthTimeout    time.Duration
	Voice           string
	Now             func() time.Time
}

type voiceChatService struct {
	p VoiceChatParams
}

func NewVoiceChatService(p VoiceChatParams) VoiceChatService {
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	if p.GenerateTimeout <= 0 {
		p.GenerateTimeout = 60 * time.Second
	}
	if p.SynthTimeout <= 0 {
		p.SynthTimeout = 30 * time.Second
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &voiceChatService{p: p}
}

// Chat runs one exchange end to end: spool the clip, transcribe, build the
// prompt, generate a reply, synthesize it, and append the record. Each stage
// past transcription degrades on failure instead of aborting; only scratch
// I/O and a transcription engine error produce a hard failure.
func (s *voiceChatService) Chat(ctx context.Context, audio io.Reader, topic string) (*ChatResult, error) {
	const op = "VoiceChatService.Chat"

	if topic == "" {
		topic = DefaultTopic
	}

	clip, err := s.spool(audio)
	if err != nil {
		return nil, err
	}

	userText, confidence, err := s.p.STT.Transcribe(ctx, clip, s.p.Language)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "transcription failed", err)
	}
	if stt.IsNoSpeech(userText) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Could not transcribe audio", nil)
	}
	userText = strings.TrimSpace(userText)

	s.p.Logger.WithFields(logrus.Fields{
		"topic":      topic,
		"chars":      len(userText),
		"confidence": confidence,
	}).Info("transcription complete")

	prompt := BuildPrompt(s.p.SystemPrompt, topic, userText)

	genCtx, cancel := context.WithTimeout(ctx, s.p.GenerateTimeout)
	replyText, err := s.p.LLM.Complete(genCtx, prompt)
	cancel()
	if err != nil {
		s.p.Logger.WithError(err).Warn("reply generation failed, using fallback reply")
		replyText = FallbackReply(userText)
	}

	ttsFile, ttsURL := s.synthesize(ctx, replyText)

	rec := &models.ConversationRecord{
		Timestamp: s.p.Now().UTC(),
		Topic:     topic,
		UserText:  userText,
		ReplyText: replyText,
		TTSFile:   ttsFile,
	}
	if err := s.p.Conversations.Append(ctx, rec); err != nil {
		s.p.Logger.WithError(err).Error("failed to append conversation history")
	}

	return &ChatResult{
		UserText:  userText,
		ReplyText: replyText,
		TTSFile:   ttsFile,
		TTSURL:    ttsURL,
		Topic:     topic,
	}, nil
}

// spool writes the upload to a scratch file and reads it back. The scratch
// file is removed on every exit path.
func (s *voiceChatService) spool(audio io.Reader) ([]byte, error) {
	const op = "VoiceChatService.Chat"

	f, err := os.CreateTemp(s.p.ScratchDir, "upload-*.wav")
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "cannot create scratch file", err)
	}
	path := f.Name()
	defer os.Remove(path)

	_, werr := io.Copy(f, audio)
	cerr := f.Close()
	if werr != nil {
		return nil, utils.E(utils.CodeInternal, op, "cannot write scratch file", werr)
	}
	if cerr != nil {
		return nil, utils.E(utils.CodeInternal, op, "cannot write scratch file", cerr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "cannot read scratch file", err)
	}
	if len(data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Could not transcribe audio", nil)
	}
	return data, nil
}

// synthesize converts the reply to audio and stores it. Every failure here
// is soft: the caller gets nil references and the request proceeds.
func (s *voiceChatService) synthesize(ctx context.Context, replyText string) (file, url *string) {
	if s.p.TTS == nil || s.p.Store == nil {
		return nil, nil
	}

	synthCtx, cancel := context.WithTimeout(ctx, s.p.SynthTimeout)
	defer cancel()

	data, err := s.p.TTS.Synthesize(synthCtx, replyText, tts.SynthesizeOpts{
		Language: s.p.Language,
		Voice:    s.p.Voice,
	})
	if err != nil {
		s.p.Logger.WithError(err).Warn("speech synthesis failed, responding without audio")
		return nil, nil
	}

	name := "reply_" + s.p.Now().UTC().Format("20060102_150405") + ".wav"
	stored, err := s.p.Store.Upload(ctx, name, "audio/wav", bytes.NewReader(data))
	if err != nil {
		s.p.Logger.WithError(err).Warn("failed to store synthesized audio")
		return nil, nil
	}

	if s.p.Archive != nil {
		if _, err := s.p.Archive.Upload(ctx, name, "audio/wav", bytes.NewReader(data)); err != nil {
			s.p.Logger.WithError(err).Warn("audio archive mirror failed")
		}
	}

	return &name, &stored
}
