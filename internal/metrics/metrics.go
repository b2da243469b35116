// Package metrics exposes Prometheus collectors for reports, imports and
// spreadsheet sync.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "railists_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	reportsTotal  *prometheus.CounterVec
	reportLatency *prometheus.HistogramVec

	importsTotal    *prometheus.CounterVec
	sheetsSyncTotal *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	collectionItems prometheus.Gauge
	collectionValue prometheus.Gauge
	securityEvents  *prometheus.CounterVec
)

// Init registers the collectors with the default registry. Calling it more
// than once is a no-op; observations made before Init are dropped.
func Init() {
	registerOnce.Do(func() {
		reportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reports_total",
				Help: "Total reports built by kind and result",
			},
			[]string{"report", "result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report"},
		)
		importsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "imports_total",
				Help: "Total collection imports by result",
			},
			[]string{"result"},
		)
		sheetsSyncTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sheets_sync_total",
				Help: "Total spreadsheet syncs by result",
			},
			[]string{"result"},
		)
		cacheLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_cache_lookups_total",
				Help: "Report cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		collectionItems = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "collection_items",
			Help: "Number of entries in the last loaded collection",
		})
		collectionValue = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "collection_value",
			Help: "Total value of the last loaded collection",
		})
		securityEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_security_events_total",
				Help: "Rate limited and suspicious HTTP requests",
			},
			[]string{"event"},
		)

		prometheus.MustRegister(
			reportsTotal,
			reportLatency,
			importsTotal,
			sheetsSyncTotal,
			cacheLookups,
			collectionItems,
			collectionValue,
			securityEvents,
		)
	})
}

// Result maps an error to the result label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// ObserveReport records a report build.
func ObserveReport(report, result string, duration time.Duration) {
	if report == "" {
		report = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if reportsTotal != nil {
		reportsTotal.WithLabelValues(report, result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(report).Observe(duration.Seconds())
	}
}

// IncImport counts a collection import.
func IncImport(result string) {
	if importsTotal != nil {
		importsTotal.WithLabelValues(result).Inc()
	}
}

// IncSheetsSync counts a spreadsheet sync attempt.
func IncSheetsSync(result string) {
	if sheetsSyncTotal != nil {
		sheetsSyncTotal.WithLabelValues(result).Inc()
	}
}

// IncCacheLookup counts a report cache hit or miss.
func IncCacheLookup(hit bool) {
	if cacheLookups == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheLookups.WithLabelValues(outcome).Inc()
}

// SetCollection publishes the size and value of the last loaded collection.
func SetCollection(items int, value float64) {
	if collectionItems != nil {
		collectionItems.Set(float64(items))
	}
	if collectionValue != nil {
		collectionValue.Set(value)
	}
}

// IncSecurityEvent counts a rate limited or suspicious request.
func IncSecurityEvent(event string) {
	if securityEvents != nil {
		securityEvents.WithLabelValues(event).Inc()
	}
}
