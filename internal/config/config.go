package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// TranscribeSettings are the decode knobs forwarded to the transcription
// engine. Defaults favor fast greedy decoding for short clips; raise BeamSize
// for higher accuracy at the cost of latency.
type TranscribeSettings struct {
	Temperature       float64
	BeamSize          int
	NoSpeechThreshold float64
	Timeout           time.Duration
}

// Config is built once at startup and passed into constructors. No package
// reads the environment after Load returns.
type Config struct {
	Port     string
	Language string

	AudioDir         string
	HistoryFile      string
	ScratchDir       string
	SystemPromptFile string

	STTProvider string // "whisper" | "google" | "openai"
	WhisperURL  string
	Transcribe  TranscribeSettings
	SampleRate  int

	LLMProvider     string // "ollama" | "vertex" | "openai"
	OllamaURL       string
	OllamaModel     string
	GenerateTimeout time.Duration

	VertexProject  string
	VertexLocation string
	VertexModel    string

	OpenAIKey string

	PreferOfflineTTS bool
	EspeakBin        string
	OfflineVoice     string
	OnlineVoice      string
	SynthWorkers     int
	SynthTimeout     time.Duration

	// AudioBucket, when set, mirrors synthesized replies to GCS.
	AudioBucket string
}

// Capabilities records which engines answered the startup probes. It is
// filled once in main and handed to constructors; nothing consults ambient
// state mid-request.
type Capabilities struct {
	STT        bool
	STTEngine  string
	LLM        bool
	LLMEngine  string
	OfflineTTS bool
	OnlineTTS  bool
}

func Load() *Config {
	return &Config{
		Port:     envStr("PORT", "8000"),
		Language: envStr("TUTOR_LANGUAGE", "de"),

		AudioDir:         envStr("AUDIO_DIR", "data/audio"),
		HistoryFile:      envStr("HISTORY_FILE", "data/history/conversations.jsonl"),
		ScratchDir:       envStr("SCRATCH_DIR", ""),
		SystemPromptFile: envStr("SYSTEM_PROMPT_FILE", "prompts/system_prompt.txt"),

		STTProvider: envStr("STT_PROVIDER", "whisper"),
		WhisperURL:  envStr("WHISPER_URL", "http://localhost:9000"),
		Transcribe: TranscribeSettings{
			Temperature:       envFloat("TRANSCRIBE_TEMPERATURE", 0.0),
			BeamSize:          envInt("TRANSCRIBE_BEAM_SIZE", 1),
			NoSpeechThreshold: envFloat("TRANSCRIBE_NO_SPEECH_THRESHOLD", 0.1),
			Timeout:           envDuration("TRANSCRIBE_TIMEOUT_SECONDS", 30*time.Second),
		},
		SampleRate: envInt("AUDIO_SAMPLE_RATE", 16000),

		LLMProvider:     envStr("LLM_PROVIDER", "ollama"),
		OllamaURL:       envStr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:     envStr("OLLAMA_MODEL", "llama3.1:8b"),
		GenerateTimeout: envDuration("GENERATE_TIMEOUT_SECONDS", 60*time.Second),

		VertexProject:  envStr("VERTEX_PROJECT", ""),
		VertexLocation: envStr("VERTEX_LOCATION", "us-central1"),
		VertexModel:    envStr("VERTEX_MODEL", "gemini-1.5-flash"),

		OpenAIKey: envStr("OPENAI_API_KEY", ""),

		PreferOfflineTTS: envBool("PREFER_OFFLINE_TTS", true),
		EspeakBin:        envStr("ESPEAK_BIN", "espeak-ng"),
		OfflineVoice:     envStr("OFFLINE_TTS_VOICE", ""),
		OnlineVoice:      envStr("ONLINE_TTS_VOICE", "alloy"),
		SynthWorkers:     envInt("SYNTH_WORKERS", 2),
		SynthTimeout:     envDuration("SYNTH_TIMEOUT_SECONDS", 30*time.Second),

		AudioBucket: envStr("AUDIO_BUCKET", ""),
	}
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
