package core

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func eur(s string) Money {
	return Euro(decimal.RequireFromString(s))
}

func boughtIn(year int, price string) Purchase {
	p := Purchase{Shop: "Shop", Price: eur(price)}
	if year != 0 {
		p.Date = time.Date(year, 3, 15, 0, 0, 0, 0, time.UTC)
	}
	return p
}

func item(c Category, year, count int, price string) Item {
	it, err := NewItem(c, CatalogInfo{Brand: "ACME", ItemNumber: "1"}, boughtIn(year, price), count, Locomotive{ClassName: "E444"})
	if err != nil {
		panic(err)
	}
	return it
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func checkStat(t *testing.T, label string, got CategoryStat, count int, value string) {
	t.Helper()
	if got.Count != count || !got.Value.Equal(dec(value)) {
		t.Fatalf("%s: expected %d/%s, got %d/%s", label, count, value, got.Count, got.Value)
	}
}

func TestComputeStatsScenario(t *testing.T) {
	items := []Item{
		item(Locomotives, 2005, 1, "50.00"),
		item(PassengerCars, 2005, 1, "20.00"),
		item(Locomotives, 2006, 2, "99999.99"),
	}
	stats := ComputeStats(items)

	if len(stats.Years) != 2 {
		t.Fatalf("expected 2 yearly rows, got %d", len(stats.Years))
	}
	r2005, r2006 := stats.Years[0], stats.Years[1]

	checkStat(t, "2005 locomotives", r2005.Stat(Locomotives), 1, "50.00")
	checkStat(t, "2005 passenger cars", r2005.Stat(PassengerCars), 1, "20.00")
	checkStat(t, "2005 trains", r2005.Stat(Trains), 0, "0")
	checkStat(t, "2005 row", CategoryStat{r2005.TotalCount, r2005.TotalValue}, 2, "70.00")

	checkStat(t, "2006 locomotives", r2006.Stat(Locomotives), 2, "99999.99")
	checkStat(t, "2006 row", CategoryStat{r2006.TotalCount, r2006.TotalValue}, 2, "99999.99")

	checkStat(t, "TOTAL locomotives", stats.Total.Stat(Locomotives), 3, "100049.99")
	checkStat(t, "TOTAL passenger cars", stats.Total.Stat(PassengerCars), 1, "20.00")
	checkStat(t, "TOTAL row", CategoryStat{stats.Total.TotalCount, stats.Total.TotalValue}, 4, "100069.99")

	if stats.TotalValue.String() != "100069.99 EUR" {
		t.Fatalf("expected total value 100069.99 EUR, got %s", stats.TotalValue)
	}
	if stats.Size != 3 {
		t.Fatalf("expected size 3 (entries, not units), got %d", stats.Size)
	}
}

func TestComputeStatsChronologicalOrder(t *testing.T) {
	items := []Item{
		item(FreightCars, 2006, 1, "10"),
		item(FreightCars, 2005, 1, "10"),
		item(Trains, 2006, 1, "10"),
	}
	rows := ComputeStats(items).Rows()
	var labels []string
	for _, r := range rows {
		labels = append(labels, r.Label())
	}
	want := []string{"2005", "2006", "TOTAL"}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("expected %v, got %v", want, labels)
	}
	if !rows[len(rows)-1].IsTotal {
		t.Fatalf("last row must be TOTAL")
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if len(stats.Years) != 0 {
		t.Fatalf("expected no yearly rows, got %d", len(stats.Years))
	}
	if !stats.Total.IsTotal || stats.Total.TotalCount != 0 || !stats.Total.TotalValue.IsZero() {
		t.Fatalf("expected zero TOTAL row, got %+v", stats.Total)
	}
	for _, c := range Categories() {
		checkStat(t, c.String(), stats.Total.Stat(c), 0, "0")
	}
	if stats.Size != 0 || !stats.TotalValue.IsZero() {
		t.Fatalf("expected zero summary, got %d / %s", stats.Size, stats.TotalValue)
	}
	if len(stats.Rows()) != 1 {
		t.Fatalf("expected only the TOTAL row")
	}

	depot := BuildDepot(nil)
	if depot.Len() != 0 || depot.Locomotives == nil {
		t.Fatalf("expected an empty, non-nil depot")
	}
}

func sampleItems() []Item {
	return []Item{
		item(Locomotives, 2019, 1, "189.90"),
		item(Trains, 2019, 1, "329.00"),
		item(PassengerCars, 2020, 3, "42.50"),
		item(FreightCars, 2018, 2, "31.99"),
		item(Locomotives, 0, 1, "120.00"),
		item(FreightCars, 2020, 1, "0.01"),
		item(Locomotives, 2018, 1, "249.95"),
		item(PassengerCars, 0, 2, "75.00"),
	}
}

func TestComputeStatsRowSum(t *testing.T) {
	stats := ComputeStats(sampleItems())
	for _, c := range Categories() {
		count, value := 0, decimal.Zero
		for _, row := range stats.Years {
			count += row.Stat(c).Count
			value = value.Add(row.Stat(c).Value)
		}
		checkStat(t, "TOTAL "+c.String(), stats.Total.Stat(c), count, value.String())
	}
	for _, row := range stats.Years {
		count, value := 0, decimal.Zero
		for _, c := range Categories() {
			count += row.Stat(c).Count
			value = value.Add(row.Stat(c).Value)
		}
		checkStat(t, "row "+row.Label(), CategoryStat{row.TotalCount, row.TotalValue}, count, value.String())
	}
}

func TestComputeStatsGrandTotalIncludesUndated(t *testing.T) {
	items := sampleItems()
	stats := ComputeStats(items)

	count, value := 0, decimal.Zero
	for _, it := range items {
		count += it.Count()
		value = value.Add(it.Value().Amount)
	}
	checkStat(t, "TOTAL grand figures", CategoryStat{stats.Total.TotalCount, stats.Total.TotalValue}, count, value.String())
	if !stats.TotalValue.Amount.Equal(value) {
		t.Fatalf("expected collection value %s, got %s", value, stats.TotalValue.Amount)
	}
	checkStat(t, "undated", stats.Undated, 3, "195.00")
	checkStat(t, "TOTAL locomotives", stats.Total.Stat(Locomotives), 2, "439.85")
	if stats.Size != len(items) {
		t.Fatalf("expected size %d, got %d", len(items), stats.Size)
	}
}

func TestComputeStatsCategoryPartition(t *testing.T) {
	for _, c := range Categories() {
		stats := ComputeStats([]Item{item(c, 2021, 4, "12.34")})
		row := stats.Years[0]
		for _, other := range Categories() {
			want := CategoryStat{}
			if other == c {
				want = CategoryStat{Count: 4, Value: dec("12.34")}
			}
			checkStat(t, c.String()+"/"+other.String(), row.Stat(other), want.Count, want.Value.String())
		}
	}
}

func TestComputeStatsIdempotent(t *testing.T) {
	items := sampleItems()
	first := ComputeStats(items)
	second := ComputeStats(items)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results:\n%+v\n%+v", first, second)
	}
}

func TestComputeStatsSumsNegativesAsGiven(t *testing.T) {
	stats := ComputeStats([]Item{
		item(Trains, 2010, 2, "10.00"),
		item(Trains, 2010, -1, "-4.00"),
	})
	checkStat(t, "trains", stats.Total.Stat(Trains), 1, "6.00")
}

func TestComputeStatsRoundsOncePerCell(t *testing.T) {
	items := []Item{
		item(FreightCars, 2005, 1, "0.004"),
		item(FreightCars, 2005, 1, "0.004"),
		item(FreightCars, 2005, 1, "0.004"),
		item(Trains, 2006, 1, "0.005"),
		item(Trains, 2006, 1, "0.005"),
		item(Locomotives, 0, 1, "0.003"),
		item(Locomotives, 0, 1, "0.003"),
	}
	stats := ComputeStats(items)

	checkStat(t, "2005 freight cars", stats.Years[0].Stat(FreightCars), 3, "0.01")
	checkStat(t, "2005 row", CategoryStat{stats.Years[0].TotalCount, stats.Years[0].TotalValue}, 3, "0.01")
	checkStat(t, "2006 trains", stats.Years[1].Stat(Trains), 2, "0.01")
	checkStat(t, "TOTAL freight cars", stats.Total.Stat(FreightCars), 3, "0.01")
	checkStat(t, "undated", stats.Undated, 2, "0.01")
	checkStat(t, "TOTAL row", CategoryStat{stats.Total.TotalCount, stats.Total.TotalValue}, 7, "0.03")

	// 0.012 + 0.010 + 0.006
	if !stats.TotalValue.Amount.Equal(dec("0.03")) {
		t.Fatalf("expected collection value 0.03, got %s", stats.TotalValue.Amount)
	}
}
