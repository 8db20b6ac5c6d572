package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/mhagedorn/sprachtutor/internal/utils"
)

// Ollama generates replies through a local Ollama server's /api/generate
// endpoint, non-streaming.
type Ollama struct {
	baseURL string
	model   string
	httpc   *http.Client
}

func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:8b"
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		// Timeouts come from the caller's context.
		httpc: &http.Client{},
	}
}

func (o *Ollama) Close() error { return nil }

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response *string `json:"response"`
	Error    string  `json:"error"`
}

func (o *Ollama) Complete(ctx context.Context, prompt string) (string, error) {
	const op = "llm.Ollama.Complete"

	payload, err := json.Marshal(ollamaGenerateRequest{Model: o.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", utils.E(utils.CodeTimeout, op, "generation request timed out", err)
		}
		return "", utils.E(utils.CodeUnavailable, op, "cannot reach generation engine", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", utils.E(utils.CodeProtocol, op,
			fmt.Sprintf("unexpected status %d from generation engine", resp.StatusCode),
			errors.New(strings.TrimSpace(string(snippet))))
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", utils.E(utils.CodeProtocol, op, "malformed generation response", err)
	}
	if out.Error != "" {
		return "", utils.E(utils.CodeProtocol, op, "generation engine reported an error", errors.New(out.Error))
	}
	if out.Response == nil {
		return "", utils.E(utils.CodeProtocol, op, "generation response missing response field", nil)
	}
	return strings.TrimSpace(*out.Response), nil
}

// Ping reports whether the server answers at all. Used by the startup probe.
func (o *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama status %d", resp.StatusCode)
	}
	return nil
}

// ListModels returns the names of locally available models.
func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama status %d", resp.StatusCode)
	}

	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
