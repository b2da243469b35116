package backend

import (
	"context"
	"fmt"
	"log/slog"

	"railists/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case YAMLBackend:
		f.logger.InfoContext(ctx, "Initialized YAML collection source", "file", config.CollectionFile)
		return &SourceResult{Source: NewYAMLSource(config.CollectionFile)}, nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite collection source", "db_path", config.SQLiteDBPath)
		return &SourceResult{
			Source:  NewSQLiteSource(repo),
			Cleanup: repo.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
