package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"railists/internal/core"
	"railists/internal/datasource"
	"railists/internal/storage"
)

// ErrNoImports is returned by the SQLite source before the first import.
var ErrNoImports = errors.New("no collection has been imported yet")

// YAMLSource reads the collection file on every Load.
type YAMLSource struct {
	path string
}

func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

func (s *YAMLSource) Name() string { return "yaml:" + s.path }

func (s *YAMLSource) Load(_ context.Context) (core.Collection, error) {
	return datasource.LoadCollection(s.path)
}

// Version is derived from the file modification time and size.
func (s *YAMLSource) Version(_ context.Context) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("stat collection file: %w", err)
	}
	return fmt.Sprintf("%s@%d:%d", s.path, info.ModTime().UnixNano(), info.Size()), nil
}

// importStore is the part of the SQLite repository the source needs.
type importStore interface {
	LatestImport(ctx context.Context) (storage.ImportRecord, error)
	LoadCollection(ctx context.Context, importID int64) (core.Collection, error)
}

// SQLiteSource serves the most recent import.
type SQLiteSource struct {
	store importStore
}

func NewSQLiteSource(store importStore) *SQLiteSource {
	return &SQLiteSource{store: store}
}

func (s *SQLiteSource) Name() string { return "sqlite" }

func (s *SQLiteSource) Load(ctx context.Context) (core.Collection, error) {
	rec, err := s.latest(ctx)
	if err != nil {
		return core.Collection{}, err
	}
	return s.store.LoadCollection(ctx, rec.ID)
}

// Version is the id of the latest import.
func (s *SQLiteSource) Version(ctx context.Context) (string, error) {
	rec, err := s.latest(ctx)
	if err != nil {
		return "", err
	}
	return "import:" + strconv.FormatInt(rec.ID, 10), nil
}

func (s *SQLiteSource) latest(ctx context.Context) (storage.ImportRecord, error) {
	rec, err := s.store.LatestImport(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.ImportRecord{}, ErrNoImports
	}
	return rec, err
}
