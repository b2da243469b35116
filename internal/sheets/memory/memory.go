// Package memory keeps report sheets in process. It backs the worker when
// no spreadsheet is configured and stands in for Google Sheets in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"railists/internal/core"
	"railists/internal/report"
	ports "railists/internal/sheets"
)

var _ ports.ReportWriter = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	sheets map[string]report.Table
	writes int
}

func New() *Store {
	return &Store{sheets: make(map[string]report.Table)}
}

// WriteStats stores the stats table under the "Stats" sheet.
func (s *Store) WriteStats(_ context.Context, stats core.CollectionStats) (string, error) {
	return s.put("Stats", report.StatsTable(stats)), nil
}

// WriteDepot stores the depot table under the "Depot" sheet.
func (s *Store) WriteDepot(_ context.Context, depot core.Depot) (string, error) {
	return s.put("Depot", report.DepotTable(depot)), nil
}

func (s *Store) put(sheet string, t report.Table) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = t
	s.writes++
	return fmt.Sprintf("mem:%s:%d", sheet, len(t.Rows)+1)
}

// Sheet returns the last table written to a sheet.
func (s *Store) Sheet(name string) (report.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.sheets[name]
	return t, ok
}

// Writes counts successful writes across all sheets.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
