package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mhagedorn/sprachtutor/internal/api/handlers"
	"github.com/mhagedorn/sprachtutor/internal/api/middleware"
	"github.com/mhagedorn/sprachtutor/internal/api/routes"
	"github.com/mhagedorn/sprachtutor/internal/config"
	"github.com/mhagedorn/sprachtutor/internal/logger"
	"github.com/mhagedorn/sprachtutor/internal/providers/llm"
	"github.com/mhagedorn/sprachtutor/internal/providers/stt"
	"github.com/mhagedorn/sprachtutor/internal/providers/tts"
	"github.com/mhagedorn/sprachtutor/internal/repositories/jsonl"
	"github.com/mhagedorn/sprachtutor/internal/services"
	"github.com/mhagedorn/sprachtutor/internal/storage"
	"github.com/mhagedorn/sprachtutor/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New()

	ctx := context.Background()

	pool := &workers.Pool{NumWorkers: cfg.SynthWorkers, Logger: log}
	pool.Start(ctx)

	sttProvider, err := buildSTT(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("speech-to-text init failed")
	}
	defer sttProvider.Close()

	llmProvider, err := buildLLM(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("reply generation init failed")
	}
	defer llmProvider.Close()

	synth, caps := buildTTS(cfg, pool, log)
	defer synth.Close()

	caps.STTEngine = cfg.STTProvider
	caps.STT = true
	caps.LLMEngine = cfg.LLMProvider
	caps.LLM = probeLLM(ctx, llmProvider, log)

	log.WithFields(logrus.Fields{
		"stt":         caps.STTEngine,
		"llm":         caps.LLMEngine,
		"llm_up":      caps.LLM,
		"tts_offline": caps.OfflineTTS,
		"tts_online":  caps.OnlineTTS,
	}).Info("engine capabilities")

	store, err := storage.NewLocalDir(cfg.AudioDir, "/audio")
	if err != nil {
		log.WithError(err).Fatal("audio directory init failed")
	}

	var archive storage.Uploader
	if cfg.AudioBucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, cfg.AudioBucket)
		if err != nil {
			log.WithError(err).Warn("audio archive disabled: GCS init failed")
		} else {
			archive = gcs
			defer gcs.Close()
		}
	}

	repo, err := jsonl.NewConversationRepo(cfg.HistoryFile)
	if err != nil {
		log.WithError(err).Fatal("history init failed")
	}
	convos := services.NewConversationService(repo)

	chat := services.NewVoiceChatService(services.VoiceChatParams{
		STT:           sttProvider,
		LLM:           llmProvider,
		TTS:           synth,
		Store:         store,
		Archive:       archive,
		Conversations: convos,
		Logger:        log,

		Language:        cfg.Language,
		SystemPrompt:    services.LoadSystemPrompt(cfg.SystemPromptFile),
		ScratchDir:      cfg.ScratchDir,
		GenerateTimeout: cfg.GenerateTimeout,
		SynthTimeout:    cfg.SynthTimeout,
		Voice:           cfg.OfflineVoice,
	})

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Voice:   handlers.NewVoiceChatHandler(chat, log),
		History: handlers.NewHistoryHandler(convos),
		Audio:   handlers.NewAudioHandler(cfg.AudioDir),
	})

	log.WithField("port", cfg.Port).Info("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func buildSTT(ctx context.Context, cfg *config.Config, log *logrus.Logger) (stt.Provider, error) {
	switch cfg.STTProvider {
	case "whisper":
		return stt.NewWhisperServer(cfg.WhisperURL, stt.WhisperOptions{
			Temperature:       cfg.Transcribe.Temperature,
			BeamSize:          cfg.Transcribe.BeamSize,
			NoSpeechThreshold: cfg.Transcribe.NoSpeechThreshold,
			Timeout:           cfg.Transcribe.Timeout,
		}, log), nil
	case "google":
		return stt.NewGoogleSpeech(ctx, cfg.SampleRate)
	case "openai":
		return stt.NewOpenAIWhisper(cfg.OpenAIKey, ""), nil
	default:
		return nil, fmt.Errorf("unknown STT_PROVIDER %q", cfg.STTProvider)
	}
}

func buildLLM(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case "ollama":
		return llm.NewOllama(cfg.OllamaURL, cfg.OllamaModel), nil
	case "vertex":
		return llm.NewVertexGemini(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.VertexModel)
	case "openai":
		return llm.NewOpenAI(cfg.OpenAIKey, ""), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// buildTTS assembles the offline/online fallback pair from whatever engines
// are actually present. A machine with neither still serves requests; they
// just come back without audio.
func buildTTS(cfg *config.Config, pool *workers.Pool, log *logrus.Logger) (*tts.Fallback, config.Capabilities) {
	var caps config.Capabilities

	fb := &tts.Fallback{PreferOffline: cfg.PreferOfflineTTS, Log: log}

	offline, err := tts.NewEspeak(cfg.EspeakBin, pool, log)
	if err != nil {
		log.WithError(err).Warn("offline synthesis unavailable")
	} else {
		fb.Offline = offline
		caps.OfflineTTS = true
	}

	if cfg.OpenAIKey != "" {
		fb.Online = tts.NewOpenAISpeech(cfg.OpenAIKey, cfg.OnlineVoice)
		caps.OnlineTTS = true
	}

	return fb, caps
}

func probeLLM(ctx context.Context, p llm.Provider, log *logrus.Logger) bool {
	o, ok := p.(*llm.Ollama)
	if !ok {
		// Remote providers are assumed reachable; failures degrade per request.
		return true
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := o.Ping(probeCtx); err != nil {
		log.WithError(err).Warn("generation engine is not reachable, replies will use the fallback")
		return false
	}
	if names, err := o.ListModels(probeCtx); err == nil {
		log.WithField("models", names).Debug("generation engine models")
	}
	return true
}
