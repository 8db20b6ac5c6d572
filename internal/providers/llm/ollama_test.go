package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mhagedorn/sprachtutor/internal/utils"
)

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Stream {
			t.Error("stream must be false")
		}
		if req.Model != "llama3.1:8b" {
			t.Errorf("model = %q", req.Model)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "  Was möchtest du kaufen?  "})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "")
	got, err := o.Complete(context.Background(), "Hallo")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Was möchtest du kaufen?" {
		t.Fatalf("Complete = %q", got)
	}
}

func TestOllamaCompleteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	o := NewOllama(srv.URL, "")
	_, err := o.Complete(context.Background(), "Hallo")
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("expected UNAVAILABLE, got %v", err)
	}
}

func TestOllamaCompleteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := o.Complete(ctx, "Hallo")
	if !utils.IsCode(err, utils.CodeTimeout) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
}

func TestOllamaCompleteBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "")
	_, err := o.Complete(context.Background(), "Hallo")
	if !utils.IsCode(err, utils.CodeProtocol) {
		t.Fatalf("expected PROTOCOL, got %v", err)
	}
}

func TestOllamaCompleteMalformedPayload(t *testing.T) {
	cases := map[string]string{
		"missing field": `{"done": true}`,
		"engine error":  `{"error": "out of memory"}`,
		"not json":      `<!doctype html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			o := NewOllama(srv.URL, "")
			_, err := o.Complete(context.Background(), "Hallo")
			if !utils.IsCode(err, utils.CodeProtocol) {
				t.Fatalf("expected PROTOCOL, got %v", err)
			}
		})
	}
}

func TestOllamaPingAndListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:8b"},{"name":"mistral"}]}`))
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "")
	if err := o.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	names, err := o.ListModels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "llama3.1:8b" {
		t.Fatalf("models = %v", names)
	}
}
