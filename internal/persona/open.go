// Package persona stores the operator-configured persona prepended to
// questions sent to the text model.
package persona

import (
	"fmt"
	"io"

	"github.com/kawainime/TelegramGemini/internal/config"
	"github.com/kawainime/TelegramGemini/internal/domain"
)

const (
	defaultFilePath   = "persona.txt"
	defaultSQLitePath = "persona.db"
)

// Open builds the store selected by persona.backend. The returned closer
// releases backend resources and is never nil.
func Open(cfg config.PersonaConfig) (domain.PersonaStore, io.Closer, error) {
	switch cfg.Backend {
	case "", "file":
		path := cfg.Path
		if path == "" {
			path = defaultFilePath
		}
		return NewFileStore(path), nopCloser{}, nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = defaultSQLitePath
		}
		store, err := NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown persona backend %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
