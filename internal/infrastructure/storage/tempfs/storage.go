package tempfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

// Storage writes uploads to short-lived files under basePath.
type Storage struct {
	basePath string
	maxBytes int64
}

func New(basePath string, maxBytes int64) (*Storage, error) {
	if basePath == "" {
		basePath = os.TempDir()
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Storage{basePath: basePath, maxBytes: maxBytes}, nil
}

// Save copies data into a new temp file whose name keeps the extension of name.
// The returned cleanup removes the file and is safe to call more than once.
func (s *Storage) Save(_ context.Context, name string, data io.Reader) (string, func(), error) {
	f, err := os.CreateTemp(s.basePath, "upload-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	removed := false
	cleanup := func() {
		if removed {
			return
		}
		removed = true
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("temp_file_cleanup_failed", "path", path, "error", err)
		}
	}

	src := data
	if s.maxBytes > 0 {
		src = io.LimitReader(data, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		cleanup()
		return "", nil, domain.WrapError(domain.ErrInvalidInput, "save upload", fmt.Errorf("upload exceeds %d bytes", s.maxBytes))
	}
	return path, cleanup, nil
}
