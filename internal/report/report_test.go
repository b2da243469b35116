package report

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"railists/internal/core"
)

func eur(s string) core.Money {
	return core.Euro(decimal.RequireFromString(s))
}

func purchase(year int, price string) core.Purchase {
	return core.Purchase{Shop: "Tecnomodel", Date: time.Date(year, 1, 2, 0, 0, 0, 0, time.UTC), Price: eur(price)}
}

func scenario() []core.Item {
	return []core.Item{
		core.NewLocomotive(core.CatalogInfo{Brand: "ACME", ItemNumber: "60392", Scale: "H0", PowerMethod: core.DC}, purchase(2005, "50.00"), 1,
			core.Locomotive{ClassName: "E656", RoadNumber: "E656 077", Control: core.DccSound, DccInterface: core.Plux22}),
		core.NewPassengerCar(core.CatalogInfo{Brand: "Rivarossi", ItemNumber: "HR4147"}, purchase(2005, "20.00"), 1),
		core.NewLocomotive(core.CatalogInfo{Brand: "Roco", ItemNumber: "73115"}, purchase(2006, "99999.99"), 2,
			core.Locomotive{ClassName: "D445"}),
	}
}

func TestStatsTable(t *testing.T) {
	tbl := StatsTable(core.ComputeStats(scenario()))

	if len(tbl.Header) != 11 || tbl.Header[1] != "Locomotives (no.)" || tbl.Header[10] != "Total (EUR)" {
		t.Fatalf("unexpected header: %v", tbl.Header)
	}
	want := [][]string{
		{"2005", "1", "50.00", "0", "0.00", "1", "20.00", "0", "0.00", "2", "70.00"},
		{"2006", "2", "99999.99", "0", "0.00", "0", "0.00", "0", "0.00", "2", "99999.99"},
		{"TOTAL", "3", "100049.99", "0", "0.00", "1", "20.00", "0", "0.00", "4", "100069.99"},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Fatalf("unexpected rows:\n%v\nwant\n%v", tbl.Rows, want)
	}
	wantFooter := []string{"Total value........... 100069.99 EUR", "Rolling stocks/sets... 3"}
	if !reflect.DeepEqual(tbl.Footer, wantFooter) {
		t.Fatalf("unexpected footer: %v", tbl.Footer)
	}
}

func TestStatsSummaryMentionsUndated(t *testing.T) {
	items := append(scenario(), core.NewTrain(core.CatalogInfo{Brand: "ACME"}, core.Purchase{Price: eur("10")}, 1))
	lines := StatsSummary(core.ComputeStats(items))
	if len(lines) != 3 || !strings.HasPrefix(lines[2], "Without date") {
		t.Fatalf("unexpected summary: %v", lines)
	}
}

func TestDepotTable(t *testing.T) {
	tbl := DepotTable(core.BuildDepot(scenario()))
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0][1] != "E656" || tbl.Rows[0][7] != "Y" || tbl.Rows[0][8] != "PLUX_22" {
		t.Fatalf("unexpected first row: %v", tbl.Rows[0])
	}
	if tbl.Rows[1][7] != "N" {
		t.Fatalf("locomotive without control has no decoder: %v", tbl.Rows[1])
	}
	if tbl.Footer[0] != "2 locomotive(s)" {
		t.Fatalf("unexpected footer %q", tbl.Footer[0])
	}
}

func TestCollectionTable(t *testing.T) {
	long := strings.Repeat("x", 60)
	items := append(scenario(), core.NewFreightCar(core.CatalogInfo{Brand: "ACME", ItemNumber: "1", Description: long}, core.Purchase{Price: eur("5")}, 3))
	tbl := CollectionTable(core.Collection{Description: "Test", Items: items})

	if len(tbl.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(tbl.Rows))
	}
	first := tbl.Rows[0]
	if first[1] != "ACME" || first[2] != "1" || first[5] != "F" || first[8] != "-" || first[9] != "5.00 EUR" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if got := first[6]; len(got) != 50 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated description, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := map[string]string{
		"short":                 "short",
		strings.Repeat("a", 49): strings.Repeat("a", 49),
		strings.Repeat("b", 50): strings.Repeat("b", 47) + "...",
	}
	for in, want := range cases {
		if got := truncate(in); got != want {
			t.Errorf("truncate(%d chars) = %q, want %q", len(in), got, want)
		}
	}
}

func TestCollectionRecords(t *testing.T) {
	tbl := CollectionRecords(core.Collection{Items: scenario()})
	if tbl.Header[0] != "Brand" || tbl.Header[8] != "Price" {
		t.Fatalf("unexpected header %v", tbl.Header)
	}
	want := []string{"Rivarossi", "HR4147", "Passenger Cars", "", "", "Tecnomodel", "2005-01-02", "1", "20.00 EUR"}
	if !reflect.DeepEqual(tbl.Rows[1], want) {
		t.Fatalf("unexpected record %v", tbl.Rows[1])
	}
}

func TestBudgetTable(t *testing.T) {
	w := core.WishList{Items: []core.WishListItem{
		{Priority: core.High, Prices: []core.PriceInfo{{Shop: "A", Price: eur("195")}}},
		{Priority: core.Low, Prices: []core.PriceInfo{{Shop: "B", Price: eur("32.5")}}},
	}}
	tbl := BudgetTable(core.ComputeBudget(w))
	want := [][]string{{"High", "195.00"}, {"Normal", "0.00"}, {"Low", "32.50"}, {"TOTAL", "227.50"}}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Fatalf("unexpected rows %v", tbl.Rows)
	}

	list := WishListTable(w)
	if list.Rows[0][4] != "High" || list.Rows[0][9] != "from 195.00 EUR to 195.00 EUR" {
		t.Fatalf("unexpected wish list row %v", list.Rows[0])
	}
}
