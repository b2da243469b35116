package core

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// TotalLabel is the label of the summary row.
const TotalLabel = "TOTAL"

// CategoryStat is a count/value cell of the statistics table.
type CategoryStat struct {
	Count int
	Value decimal.Decimal
}

func (s CategoryStat) add(count int, value decimal.Decimal) CategoryStat {
	return CategoryStat{Count: s.Count + count, Value: s.Value.Add(value)}
}

// YearlyStatRow is one line of the statistics table. The TOTAL row has
// IsTotal set and a zero Year.
type YearlyStatRow struct {
	Year       Year
	IsTotal    bool
	ByCategory [NumCategories]CategoryStat
	TotalCount int
	TotalValue decimal.Decimal
}

// Label returns the year as text, or TOTAL for the summary row.
func (r YearlyStatRow) Label() string {
	if r.IsTotal {
		return TotalLabel
	}
	return strconv.Itoa(int(r.Year))
}

// Stat returns the cell for a category; an invalid category yields zero.
func (r YearlyStatRow) Stat(c Category) CategoryStat {
	if !c.Valid() {
		return CategoryStat{}
	}
	return r.ByCategory[c]
}

func (r *YearlyStatRow) add(c Category, count int, value decimal.Decimal) {
	r.ByCategory[c] = r.ByCategory[c].add(count, value)
	r.TotalCount += count
	r.TotalValue = r.TotalValue.Add(value)
}

// finish rounds every cell to cents once the row is complete. The row total
// becomes the sum of the rounded cells, so a displayed row always adds up.
func (r *YearlyStatRow) finish() {
	r.TotalValue = decimal.Zero
	for c := range r.ByCategory {
		r.ByCategory[c].Value = roundCents(r.ByCategory[c].Value)
		r.TotalValue = r.TotalValue.Add(r.ByCategory[c].Value)
	}
}

// CollectionStats is the output of ComputeStats.
type CollectionStats struct {
	// Years holds one row per acquisition year, ascending.
	Years []YearlyStatRow
	Total YearlyStatRow
	// Undated sums the items with no acquisition date. They are part of the
	// TOTAL grand figures but of no yearly row or TOTAL category cell.
	Undated    CategoryStat
	TotalValue Money
	Size       int
}

// Rows returns the yearly rows followed by the TOTAL row.
func (s CollectionStats) Rows() []YearlyStatRow {
	rows := make([]YearlyStatRow, 0, len(s.Years)+1)
	rows = append(rows, s.Years...)
	return append(rows, s.Total)
}

// ComputeStats aggregates item counts and values by acquisition year and
// category. It never fails and never mutates its input; an empty input
// produces no yearly rows and a zero TOTAL row.
//
// Values are summed exactly and rounded to cents once per finished cell
// and once for the collection value, never per item.
func ComputeStats(items []Item) CollectionStats {
	byYear := make(map[Year]*YearlyStatRow)
	var undated CategoryStat
	totalValue := ZeroMoney(currencyOf(items))

	for _, it := range items {
		value := it.purchase.Price.Amount
		totalValue = totalValue.Add(it.purchase.Price)

		y := it.Year()
		if !y.Known() {
			undated = undated.add(it.count, value)
			continue
		}
		row, ok := byYear[y]
		if !ok {
			row = &YearlyStatRow{Year: y}
			byYear[y] = row
		}
		row.add(it.category, it.count, value)
	}

	years := make([]YearlyStatRow, 0, len(byYear))
	for _, row := range byYear {
		row.finish()
		years = append(years, *row)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })

	total := YearlyStatRow{IsTotal: true}
	for _, row := range years {
		for _, c := range Categories() {
			cell := row.ByCategory[c]
			total.add(c, cell.Count, cell.Value)
		}
	}
	total.finish()
	undated.Value = roundCents(undated.Value)
	total.TotalCount += undated.Count
	total.TotalValue = total.TotalValue.Add(undated.Value)

	return CollectionStats{
		Years:      years,
		Total:      total,
		Undated:    undated,
		TotalValue: totalValue.Rounded(),
		Size:       len(items),
	}
}
