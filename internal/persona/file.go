package persona

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the persona in a single UTF-8 text file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Read returns the trimmed persona, or "" when the file is missing or blank.
func (s *FileStore) Read(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read persona %s: %w", s.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write stores the trimmed persona. Writing "" clears it.
func (s *FileStore) Write(_ context.Context, persona string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create persona directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, []byte(strings.TrimSpace(persona)), 0o644); err != nil {
		return fmt.Errorf("write persona %s: %w", s.path, err)
	}
	return nil
}
