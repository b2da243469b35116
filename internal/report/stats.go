package report

import (
	"fmt"
	"strconv"

	"railists/internal/core"
)

// StatsTable has one row per acquisition year and the TOTAL row last.
func StatsTable(s core.CollectionStats) Table {
	currency := s.TotalValue.Currency
	t := Table{Title: "Collection statistics", Header: []string{"Year"}, Align: []Align{AlignLeft}}
	for _, c := range core.Categories() {
		t.Header = append(t.Header, c.String()+" (no.)", c.String()+" ("+currency+")")
		t.Align = append(t.Align, AlignRight, AlignRight)
	}
	t.Header = append(t.Header, "Total (no.)", "Total ("+currency+")")
	t.Align = append(t.Align, AlignRight, AlignRight)

	for _, row := range s.Rows() {
		cells := []string{row.Label()}
		for _, c := range core.Categories() {
			stat := row.Stat(c)
			cells = append(cells, strconv.Itoa(stat.Count), stat.Value.StringFixed(2))
		}
		cells = append(cells, strconv.Itoa(row.TotalCount), row.TotalValue.StringFixed(2))
		t.Rows = append(t.Rows, cells)
	}
	t.Footer = StatsSummary(s)
	return t
}

// StatsSummary returns the two lines printed under the statistics table.
func StatsSummary(s core.CollectionStats) []string {
	lines := []string{
		"Total value........... " + s.TotalValue.String(),
		"Rolling stocks/sets... " + strconv.Itoa(s.Size),
	}
	if s.Undated.Count > 0 {
		lines = append(lines, fmt.Sprintf("Without date.......... %d (%s %s)", s.Undated.Count, s.Undated.Value.StringFixed(2), s.TotalValue.Currency))
	}
	return lines
}
