package cache

import "fmt"

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the store for the configured backend.
func Open(backend, filePath, dbPath string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(filePath), nil
	case BackendSQLite:
		return NewSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("unknown cache backend '%s'", backend)
	}
}
