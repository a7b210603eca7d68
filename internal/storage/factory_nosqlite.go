//go:build !sqlite

package storage

import "fmt"

func DefaultStoreKind() string {
	return "memory"
}

func newSQLiteStore(string) (Store, error) {
	return nil, fmt.Errorf("%w: sqlite is not compiled in, rebuild with -tags sqlite", ErrUnsupportedBackend)
}
