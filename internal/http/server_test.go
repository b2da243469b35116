package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"railists/internal/core"
	"railists/internal/log"
	"railists/internal/services"
	"railists/internal/storage"
)

type fakeReports struct {
	reports *services.Reports
	err     error
}

func (f fakeReports) Reports(context.Context) (*services.Reports, error) {
	return f.reports, f.err
}

type fakeImporter struct {
	paths []string
	err   error
}

func (f *fakeImporter) Import(_ context.Context, path string) (storage.ImportRecord, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return storage.ImportRecord{}, f.err
	}
	return storage.ImportRecord{ID: 7, RunID: "run-7", Source: path, ItemCount: 3, SyncStatus: storage.SyncPending}, nil
}

func euro(s string) core.Money {
	return core.Euro(decimal.RequireFromString(s))
}

func testCollection() core.Collection {
	d2005 := time.Date(2005, 3, 20, 0, 0, 0, 0, time.UTC)
	return core.Collection{
		Description: "HTTP test",
		Version:     1,
		Items: []core.Item{
			core.NewLocomotive(
				core.CatalogInfo{Brand: "ACME", ItemNumber: "60392", Description: "E.656 077", Scale: "H0", PowerMethod: core.DC},
				core.Purchase{Shop: "Treni", Date: d2005, Price: euro("50.00")},
				1,
				core.Locomotive{ClassName: "E656", RoadNumber: "E656 077", Control: core.DccSound, DccInterface: core.Next18},
			),
			core.NewPassengerCar(
				core.CatalogInfo{Brand: "Rivarossi", ItemNumber: "HR4147", Scale: "H0", PowerMethod: core.DC},
				core.Purchase{Date: d2005, Price: euro("20.00")},
				2,
			),
			core.NewFreightCar(
				core.CatalogInfo{Brand: "Roco", ItemNumber: "76000", Scale: "H0", PowerMethod: core.DC},
				core.Purchase{Price: euro("9.90")},
				1,
			),
		},
	}
}

func testWishList() core.WishList {
	return core.WishList{
		Name:    "Wants",
		Version: 1,
		Items: []core.WishListItem{
			{
				Category: core.Locomotives,
				Catalog:  core.CatalogInfo{Brand: "ACME", ItemNumber: "69500"},
				Count:    1,
				Priority: core.High,
				Prices: []core.PriceInfo{
					{Shop: "A", Price: euro("100.00")},
					{Shop: "B", Price: euro("120.00")},
				},
			},
			{
				Category: core.FreightCars,
				Catalog:  core.CatalogInfo{Brand: "Roco", ItemNumber: "1"},
				Count:    1,
				Priority: core.Low,
			},
		},
	}
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Reports == nil {
		rep, err := services.BuildReports(context.Background(), testCollection())
		if err != nil {
			t.Fatalf("BuildReports: %v", err)
		}
		rep.Version = "test@1"
		opts.Reports = fakeReports{reports: rep}
	}
	var logs bytes.Buffer
	opts.Logger = log.New(log.Config{Output: &logs})
	srv := NewServer(":0", opts)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	rr := do(t, srv, http.MethodGet, "/readyz")
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, rr, &body)
	if body.Status != "ready" || body.Checks["collection"] != "test@1" {
		t.Errorf("unexpected readiness %+v", body)
	}
}

func TestReadyFailsWhenCollectionUnavailable(t *testing.T) {
	srv := newTestServer(t, Options{Reports: fakeReports{err: errors.New("file missing")}})

	if rr := do(t, srv, http.MethodGet, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", rr.Code)
	}
	rr := do(t, srv, http.MethodGet, "/api/stats")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("stats status=%d", rr.Code)
	}
	var body errorResponse
	decode(t, rr, &body)
	if body.Error == "" || body.RequestID == "" {
		t.Errorf("error body should carry message and request id: %+v", body)
	}
}

func TestStatsJSON(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/api/stats")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body statsJSON
	decode(t, rr, &body)
	if body.Size != 3 {
		t.Errorf("size = %d, want 3", body.Size)
	}
	if body.TotalValue.Amount != "79.90" || body.TotalValue.Currency != "EUR" {
		t.Errorf("total value = %+v", body.TotalValue)
	}
	if len(body.Years) != 1 || body.Years[0].Year != "2005" {
		t.Fatalf("years = %+v", body.Years)
	}
	if got := body.Years[0].Categories["PASSENGER_CAR"]; got.Count != 2 || got.Value != "20.00" {
		t.Errorf("2005 passenger cars = %+v", got)
	}
	if body.Undated.Count != 1 || body.Undated.Value != "9.90" {
		t.Errorf("undated = %+v", body.Undated)
	}
	if body.Total.Year != core.TotalLabel {
		t.Errorf("total label = %q", body.Total.Year)
	}
}

func TestReportFormats(t *testing.T) {
	srv := newTestServer(t, Options{})

	tests := []struct {
		target      string
		contentType string
		disposition string
		contains    string
	}{
		{"/api/stats?format=csv", "text/csv; charset=utf-8", `attachment; filename="stats.csv"`, "2005"},
		{"/api/stats?format=text", "text/plain; charset=utf-8", "", "TOTAL"},
		{"/api/depot?format=csv", "text/csv; charset=utf-8", `attachment; filename="depot.csv"`, "E656 077"},
		{"/api/collection?format=csv", "text/csv; charset=utf-8", `attachment; filename="collection.csv"`, "HR4147"},
		{"/api/stats?format=pdf", "application/pdf", `attachment; filename="stats.pdf"`, "%PDF"},
		{"/api/export", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", `attachment; filename="railists.xlsx"`, "PK"},
		{"/api/export?format=csv", "text/csv; charset=utf-8", `attachment; filename="collection.csv"`, "Roco"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, tt.target)
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			if ct := rr.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if cd := rr.Header().Get("Content-Disposition"); cd != tt.disposition {
				t.Errorf("Content-Disposition = %q, want %q", cd, tt.disposition)
			}
			if !strings.Contains(rr.Body.String(), tt.contains) {
				t.Errorf("body does not contain %q", tt.contains)
			}
		})
	}
}

func TestBadFormatAndFilter(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, target := range []string{"/api/stats?format=docx", "/api/collection?category=TRAM", "/api/collection?year=x"} {
		if rr := do(t, srv, http.MethodGet, target); rr.Code != http.StatusBadRequest {
			t.Errorf("%s status=%d, want 400", target, rr.Code)
		}
	}
}

func TestCollectionFilterAndDepot(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/api/collection?category=locomotive")
	var coll collectionJSON
	decode(t, rr, &coll)
	if coll.Size != 1 || coll.Items[0].Locomotive == nil || !coll.Items[0].Locomotive.WithDecoder {
		t.Fatalf("filtered collection = %+v", coll)
	}

	rr = do(t, srv, http.MethodGet, "/api/collection?year=none")
	coll = collectionJSON{}
	decode(t, rr, &coll)
	if coll.Size != 1 || coll.Items[0].ItemNumber != "76000" || coll.Items[0].PurchasedAt != "" {
		t.Fatalf("undated collection = %+v", coll)
	}

	rr = do(t, srv, http.MethodGet, "/api/depot")
	var depot depotJSON
	decode(t, rr, &depot)
	if depot.Size != 1 || depot.Locomotives[0].DccInterface != "NEXT_18" {
		t.Fatalf("depot = %+v", depot)
	}
}

func TestWishList(t *testing.T) {
	srv := newTestServer(t, Options{})
	if rr := do(t, srv, http.MethodGet, "/api/wishlist"); rr.Code != http.StatusNotFound {
		t.Fatalf("wishlist without loader status=%d", rr.Code)
	}

	srv = newTestServer(t, Options{WishList: func(context.Context) (core.WishList, error) {
		return testWishList(), nil
	}})

	rr := do(t, srv, http.MethodGet, "/api/wishlist")
	var wl wishListJSON
	decode(t, rr, &wl)
	if len(wl.Items) != 2 || wl.Items[0].Priority != "High" {
		t.Fatalf("wish list = %+v", wl)
	}

	rr = do(t, srv, http.MethodGet, "/api/wishlist/budget")
	var budget map[string]string
	decode(t, rr, &budget)
	if budget["High"] != "120.00" || budget["Low"] != "0.00" || budget["Total"] != "120.00" {
		t.Errorf("budget = %v", budget)
	}

	rr = do(t, srv, http.MethodGet, "/api/wishlist/budget?format=text")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "120.00") {
		t.Errorf("budget text status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestImport(t *testing.T) {
	srv := newTestServer(t, Options{})
	if rr := do(t, srv, http.MethodPost, "/api/imports"); rr.Code != http.StatusNotFound {
		t.Fatalf("import without importer status=%d", rr.Code)
	}

	imp := &fakeImporter{}
	srv = newTestServer(t, Options{Importer: imp, ImportPath: "/data/collection.yaml"})
	rr := do(t, srv, http.MethodPost, "/api/imports")
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var body importJSON
	decode(t, rr, &body)
	if body.ID != 7 || body.SyncStatus != storage.SyncPending {
		t.Errorf("import = %+v", body)
	}
	if len(imp.paths) != 1 || imp.paths[0] != "/data/collection.yaml" {
		t.Errorf("imported paths = %v", imp.paths)
	}

	imp.err = errors.New("invalid file")
	if rr := do(t, srv, http.MethodPost, "/api/imports"); rr.Code != http.StatusInternalServerError {
		t.Errorf("failing import status=%d", rr.Code)
	}
}

func TestMethodNotAllowedAndNotFound(t *testing.T) {
	srv := newTestServer(t, Options{})

	if rr := do(t, srv, http.MethodPost, "/api/stats"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/stats status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/unknown"); rr.Code != http.StatusNotFound {
		t.Errorf("GET /api/unknown status=%d", rr.Code)
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/api/stats")
	for _, key := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", log.RequestIDHeader} {
		if rr.Header().Get(key) == "" {
			t.Errorf("missing header %s", key)
		}
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("API responses must not be cached, got %q", rr.Header().Get("Cache-Control"))
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(log.RequestIDHeader, "req-123")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if got := rr.Header().Get(log.RequestIDHeader); got != "req-123" {
		t.Errorf("request id = %q, want the caller's", got)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Options{RequestsPerMinute: 2})

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodGet, "/api/depot"); rr.Code != http.StatusOK {
			t.Fatalf("request %d status=%d", i+1, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodGet, "/api/depot")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status=%d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if rr := do(t, srv, http.MethodGet, "/healthz"); rr.Code != http.StatusOK {
		t.Errorf("health checks are not rate limited, got %d", rr.Code)
	}
}

func TestShutdownTwice(t *testing.T) {
	srv := newTestServer(t, Options{})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}
