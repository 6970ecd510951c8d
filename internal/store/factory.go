package store

import (
	"context"
	"fmt"
)

// NewStore opens a store backend: "fs" (the default) rooted at path, or
// "sqlite" on the database file at path.
func NewStore(ctx context.Context, kind, path string) (Store, error) {
	switch kind {
	case "", "fs":
		s, err := NewFSStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteStore(ctx, path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes stores holding resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
