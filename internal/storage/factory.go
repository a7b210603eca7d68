package storage

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrUnsupportedBackend = errors.New("unsupported store backend")

// NewStore opens the backend named by kind; an empty kind is the in-memory
// store. The sqlite backend is compiled in only with the sqlite build tag.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if sqlitePath == "" {
			return nil, errors.New("sqlite store requires a database path")
		}
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, kind)
	}
}

// CloseIfSupported releases stores holding external resources.
func CloseIfSupported(store Store) error {
	if closer, ok := store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
