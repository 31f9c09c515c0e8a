package store

import (
	"fmt"

	"rstdpnet/internal/report"
)

// New constructs a report.Store backend by name, mirroring
// internal/storage/factory.go's kind-switch pattern. kind "" and "memory"
// both select the default in-memory store; "sqlite" requires the binary to
// be built with -tags sqlite.
func New(kind, path string) (report.Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported report store backend: %s", kind)
	}
}
