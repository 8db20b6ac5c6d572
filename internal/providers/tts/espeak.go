package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mhagedorn/sprachtutor/internal/utils"
	"github.com/mhagedorn/sprachtutor/internal/workers"
)

// Espeak synthesizes speech with the espeak-ng binary. The binary blocks for
// the whole synthesis, so every invocation runs on the shared worker pool.
type Espeak struct {
	bin  string
	pool *workers.Pool
	log  *logrus.Logger

	mu     sync.Mutex
	voices map[string]string // language -> resolved voice
}

func NewEspeak(bin string, pool *workers.Pool, log *logrus.Logger) (*Espeak, error) {
	if bin == "" {
		bin = "espeak-ng"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("offline tts engine not found: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Espeak{bin: path, pool: pool, log: log, voices: make(map[string]string)}, nil
}

func (e *Espeak) Name() string { return "espeak" }

func (e *Espeak) Close() error { return nil }

func (e *Espeak) Synthesize(ctx context.Context, text string, opts SynthesizeOpts) ([]byte, error) {
	const op = "tts.Espeak.Synthesize"

	if strings.TrimSpace(text) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "nothing to synthesize", nil)
	}

	out, err := os.CreateTemp("", "espeak-*.wav")
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "cannot create synthesis output file", err)
	}
	path := out.Name()
	_ = out.Close()
	defer os.Remove(path)

	var data []byte
	err = e.pool.Do(ctx, func() error {
		voice := opts.Voice
		if voice == "" {
			voice = e.voiceFor(ctx, opts.Language)
		}

		args := []string{"-w", path}
		if voice != "" {
			args = append(args, "-v", voice)
		}
		args = append(args, text)

		cmd := exec.CommandContext(ctx, e.bin, args...)
		if out, cerr := cmd.CombinedOutput(); cerr != nil {
			return fmt.Errorf("%s: %s", cerr, strings.TrimSpace(string(out)))
		}

		b, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		if len(b) == 0 {
			return errors.New("engine produced no audio")
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "offline synthesis failed", err)
	}
	return data, nil
}

// voiceFor picks the first voice the engine lists for the language. The
// result is cached; an empty string leaves the engine default in place.
func (e *Espeak) voiceFor(ctx context.Context, language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return ""
	}

	e.mu.Lock()
	cached, ok := e.voices[lang]
	e.mu.Unlock()
	if ok {
		return cached
	}

	voice := ""
	cmd := exec.CommandContext(ctx, e.bin, "--voices="+lang)
	out, err := cmd.Output()
	if err != nil {
		e.log.WithError(err).WithField("language", lang).Warn("voice listing failed, using engine default")
	} else {
		voice = firstVoice(string(out))
	}

	e.mu.Lock()
	e.voices[lang] = voice
	e.mu.Unlock()
	return voice
}

// firstVoice parses `espeak-ng --voices=<lang>` output. The first line is a
// header; data rows look like "  5  de  --/M  German  de  ..." with the voice
// name in the fourth column.
func firstVoice(listing string) string {
	lines := strings.Split(listing, "\n")
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) >= 4 {
			return fields[3]
		}
	}
	return ""
}
