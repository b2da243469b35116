package backend

import (
	"context"

	"railists/internal/core"
)

// CollectionSource provides the collection the reports are built from.
type CollectionSource interface {
	// Load returns the current collection.
	Load(ctx context.Context) (core.Collection, error)
	// Version changes whenever Load would return different data. It is
	// used as the report cache key.
	Version(ctx context.Context) (string, error)
	// Name describes the source for logs.
	Name() string
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SourceResult contains the source instance and optional cleanup function
type SourceResult struct {
	Source  CollectionSource
	Cleanup CleanupFunc
}

// Factory creates collection sources based on configuration
type Factory interface {
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
}

// Config holds configuration for source creation
type Config struct {
	Type BackendType

	// YAML specific
	CollectionFile string

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	YAMLBackend   BackendType = "yaml"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case YAMLBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
