package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalDir stores objects as files in one directory and returns the URL path
// they are served under.
type LocalDir struct {
	dir       string
	urlPrefix string
}

func NewLocalDir(dir, urlPrefix string) (*LocalDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if urlPrefix == "" {
		urlPrefix = "/audio"
	}
	return &LocalDir{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (l *LocalDir) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if objectName == "" || objectName != filepath.Base(objectName) {
		return "", errors.New("invalid object name")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(l.dir, objectName), data, 0o644); err != nil {
		return "", err
	}
	return l.urlPrefix + "/" + objectName, nil
}
