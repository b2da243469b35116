package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"railists/internal/core"
	"railists/internal/storage"
)

const testCollectionYAML = `version: 2
description: Service test
modifiedAt: "2024-03-01 09:00:00"
elements:
  - brand: ACME
    itemNumber: "60392"
    description: E.656 077
    powerMethod: DC
    scale: H0
    rollingStocks:
      - typeName: E656
        roadNumber: E656 077
        category: LOCOMOTIVE
        control: DCC_SOUND
    purchaseInfo:
      date: "2005-03-20"
      price: "50,00"
  - brand: Rivarossi
    itemNumber: HR4147
    powerMethod: DC
    scale: H0
    rollingStocks:
      - typeName: Az13
        category: PASSENGER_CAR
    purchaseInfo:
      date: "2006-01-10"
      price: "20,00"
`

func writeTestCollection(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collection.yaml")
	if err := os.WriteFile(path, []byte(testCollectionYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "railists.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []int64
	err   error
}

func (f *fakePublisher) PublishCollectionImported(_ context.Context, importID int64, _ string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, importID)
	return f.err
}

// failingWriter fails every write.
type failingWriter struct{}

var errSheetsDown = errors.New("sheets unavailable")

func (failingWriter) WriteStats(context.Context, core.CollectionStats) (string, error) {
	return "", errSheetsDown
}

func (failingWriter) WriteDepot(context.Context, core.Depot) (string, error) {
	return "", errSheetsDown
}
