// Package jsonl persists conversation records as an append-only
// newline-delimited JSON file. One record is one line, written with a single
// O_APPEND write, so concurrent appends never interleave.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/mhagedorn/sprachtutor/internal/models"
)

type ConversationRepo interface {
	Append(ctx context.Context, rec *models.ConversationRecord) error
	// Recent returns up to limit of the most recent records, preserving their
	// original chronological order.
	Recent(ctx context.Context, limit int) ([]models.ConversationRecord, error)
}

type conversationRepo struct {
	path string
	mu   sync.Mutex
}

func NewConversationRepo(path string) (ConversationRepo, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &conversationRepo{path: path}, nil
}

func (r *conversationRepo) Append(ctx context.Context, rec *models.ConversationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (r *conversationRepo) Recent(ctx context.Context, limit int) ([]models.ConversationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []models.ConversationRecord{}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.ConversationRecord{}, nil
		}
		return nil, err
	}
	defer f.Close()

	// Keep only the trailing window while scanning.
	out := make([]models.ConversationRecord, 0, limit)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec models.ConversationRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, err
		}
		if len(out) == limit {
			copy(out, out[1:])
			out = out[:limit-1]
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
