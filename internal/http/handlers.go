package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"railists/internal/core"
	"railists/internal/log"
	"railists/internal/render"
	"railists/internal/report"
	"railists/internal/services"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks that the collection can be loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks := map[string]string{}
	status, httpStatus := "ready", http.StatusOK
	if rep, err := s.opts.Reports.Reports(ctx); err != nil {
		checks["collection"] = "failed: " + err.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["collection"] = rep.Version
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// reports loads the current reports, answering 503 on failure.
func (s *Server) reports(w http.ResponseWriter, r *http.Request) (*services.Reports, bool) {
	rep, err := s.opts.Reports.Reports(r.Context())
	if err != nil {
		log.FromContext(r.Context()).Error("Failed to build reports",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err.Error())
		writeError(w, http.StatusServiceUnavailable, "collection unavailable")
		return nil, false
	}
	return rep, true
}

func (s *Server) format(w http.ResponseWriter, r *http.Request) (render.Format, bool) {
	format, err := ParseFormat(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return format, true
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	format, ok := s.format(w, r)
	if !ok {
		return
	}
	filter, err := ParseCollectionFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, ok := s.reports(w, r)
	if !ok {
		return
	}

	c := filter.Apply(rep.Collection)
	if format == FormatJSON {
		writeJSON(w, http.StatusOK, toCollectionJSON(c))
		return
	}
	writeTables(w, r, format, "collection", report.CollectionTable(c))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	format, ok := s.format(w, r)
	if !ok {
		return
	}
	rep, ok := s.reports(w, r)
	if !ok {
		return
	}

	if format == FormatJSON {
		writeJSON(w, http.StatusOK, toStatsJSON(rep.Stats))
		return
	}
	writeTables(w, r, format, "stats", report.StatsTable(rep.Stats))
}

func (s *Server) handleDepot(w http.ResponseWriter, r *http.Request) {
	format, ok := s.format(w, r)
	if !ok {
		return
	}
	rep, ok := s.reports(w, r)
	if !ok {
		return
	}

	if format == FormatJSON {
		writeJSON(w, http.StatusOK, toDepotJSON(rep.Depot))
		return
	}
	writeTables(w, r, format, "depot", report.DepotTable(rep.Depot))
}

// handleExport returns the collection, statistics and depot in one
// workbook or document. CSV holds a single table, so it gets the flat
// collection records.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, ok := s.format(w, r)
	if !ok {
		return
	}
	if format == FormatJSON {
		format = render.FormatXLSX
	}
	rep, ok := s.reports(w, r)
	if !ok {
		return
	}

	if format == render.FormatCSV {
		writeTables(w, r, format, "collection", report.CollectionRecords(rep.Collection))
		return
	}
	writeTables(w, r, format, "railists",
		report.CollectionTable(rep.Collection),
		report.StatsTable(rep.Stats),
		report.DepotTable(rep.Depot))
}

func (s *Server) wishList(w http.ResponseWriter, r *http.Request) (core.WishList, bool) {
	if s.opts.WishList == nil {
		writeError(w, http.StatusNotFound, "no wish list configured")
		return core.WishList{}, false
	}
	wl, err := s.opts.WishList(r.Context())
	if err != nil {
		log.FromContext(r.Context()).Error("Failed to load wish list",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err.Error())
		writeError(w, http.StatusServiceUnavailable, "wish list unavailable")
		return core.WishList{}, false
	}
	return wl, true
}

func (s *Server) handleWishList(w http.ResponseWriter, r *http.Request) {
	format, ok := s.format(w, r)
	if !ok {
		return
	}
	wl, ok := s.wishList(w, r)
	if !ok {
		return
	}

	if format == FormatJSON {
		writeJSON(w, http.StatusOK, toWishListJSON(wl))
		return
	}
	writeTables(w, r, format, "wishlist", report.WishListTable(wl))
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	format, ok := s.format(w, r)
	if !ok {
		return
	}
	wl, ok := s.wishList(w, r)
	if !ok {
		return
	}

	if format == FormatJSON {
		writeJSON(w, http.StatusOK, toWishListJSON(wl).Budget)
		return
	}
	writeTables(w, r, format, "budget", report.BudgetTable(core.ComputeBudget(wl)))
}

type importJSON struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	ItemCount  int       `json:"item_count"`
	ImportedAt time.Time `json:"imported_at"`
	SyncStatus string    `json:"sync_status"`
}

// handleImport stores the configured collection file and queues it for
// spreadsheet sync.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if s.opts.Importer == nil || s.opts.ImportPath == "" {
		writeError(w, http.StatusNotFound, "imports are not enabled")
		return
	}

	rec, err := s.opts.Importer.Import(r.Context(), s.opts.ImportPath)
	if err != nil {
		log.FromContext(r.Context()).Error("Import failed",
			log.FieldOperation, log.OpImport,
			log.FieldFile, s.opts.ImportPath,
			log.FieldError, err.Error())
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "import failed")
		return
	}

	log.FromContext(r.Context()).Info("Collection imported",
		log.NewFields().WithOperation(log.OpImport).WithImport(rec.ID, rec.RunID, rec.ItemCount).ToSlice()...)
	writeJSON(w, http.StatusCreated, importJSON{
		ID:         rec.ID,
		RunID:      rec.RunID,
		Source:     rec.Source,
		ItemCount:  rec.ItemCount,
		ImportedAt: rec.ImportedAt,
		SyncStatus: rec.SyncStatus,
	})
}
