package store

import "github.com/pkg/errors"

// NewStore returns an uninitialized store of the given kind: "memory" (the
// default) or "sqlite" backed by the file at sqlitePath.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if sqlitePath == "" {
			return nil, errors.New("sqlite path is required")
		}
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, errors.Errorf("unsupported store backend: %s", kind)
	}
}
