package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"railists/internal/core"
	"railists/internal/render"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		accept  string
		want    render.Format
		wantErr bool
	}{
		{name: "default json", target: "/api/stats", want: FormatJSON},
		{name: "query csv", target: "/api/stats?format=csv", want: render.FormatCSV},
		{name: "query is case insensitive", target: "/api/stats?format=PDF", want: render.FormatPDF},
		{name: "query wins over accept", target: "/api/stats?format=text", accept: "text/csv", want: render.FormatText},
		{name: "accept csv", target: "/api/stats", accept: "text/csv", want: render.FormatCSV},
		{name: "accept with params", target: "/api/stats", accept: "text/html, application/pdf;q=0.9", want: render.FormatPDF},
		{
			name:   "accept xlsx",
			target: "/api/stats",
			accept: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			want:   render.FormatXLSX,
		},
		{name: "unknown accept falls back", target: "/api/stats", accept: "text/html", want: FormatJSON},
		{name: "unknown query format", target: "/api/stats?format=docx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			got, err := ParseFormat(r)
			if tt.wantErr {
				if !errors.Is(err, errBadParam) {
					t.Fatalf("expected errBadParam, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCollectionFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    CollectionFilter
		wantErr bool
	}{
		{name: "empty", query: url.Values{}, want: CollectionFilter{}},
		{
			name:  "category",
			query: url.Values{"category": {"freight_car"}},
			want:  CollectionFilter{Category: core.FreightCars, HasCategory: true},
		},
		{
			name:  "year",
			query: url.Values{"year": {"2005"}},
			want:  CollectionFilter{Year: 2005, HasYear: true},
		},
		{
			name:  "undated",
			query: url.Values{"year": {"none"}},
			want:  CollectionFilter{Year: core.UnknownYear, HasYear: true},
		},
		{name: "bad category", query: url.Values{"category": {"TRAM"}}, wantErr: true},
		{name: "bad year", query: url.Values{"year": {"abc"}}, wantErr: true},
		{name: "negative year", query: url.Values{"year": {"-3"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCollectionFilter(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCollectionFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCollectionFilter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCollectionFilterApply(t *testing.T) {
	price := core.Euro(decimal.NewFromInt(10))
	dated := core.Purchase{Date: time.Date(2005, 3, 20, 0, 0, 0, 0, time.UTC), Price: price}
	c := core.Collection{Items: []core.Item{
		core.NewLocomotive(core.CatalogInfo{Brand: "ACME", ItemNumber: "1"}, dated, 1, core.Locomotive{}),
		core.NewFreightCar(core.CatalogInfo{Brand: "ACME", ItemNumber: "2"}, core.Purchase{Price: price}, 1),
		core.NewFreightCar(core.CatalogInfo{Brand: "ACME", ItemNumber: "3"}, dated, 1),
	}}

	if got := (CollectionFilter{}).Apply(c); got.Len() != 3 {
		t.Errorf("empty filter kept %d items", got.Len())
	}

	freight := CollectionFilter{Category: core.FreightCars, HasCategory: true}.Apply(c)
	if freight.Len() != 2 || freight.Items[0].ItemNumber() != "2" {
		t.Errorf("category filter = %d items", freight.Len())
	}

	undated := CollectionFilter{Year: core.UnknownYear, HasYear: true}.Apply(c)
	if undated.Len() != 1 || undated.Items[0].ItemNumber() != "2" {
		t.Errorf("undated filter = %d items", undated.Len())
	}

	both := CollectionFilter{Category: core.FreightCars, HasCategory: true, Year: 2005, HasYear: true}.Apply(c)
	if both.Len() != 1 || both.Items[0].ItemNumber() != "3" {
		t.Errorf("combined filter = %d items", both.Len())
	}

	if c.Len() != 3 {
		t.Error("Apply must not modify its input")
	}
}
