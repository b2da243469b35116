package sheets

import (
	"context"

	"railists/internal/core"
)

// Ports for outbound adapters.
type (
	// StatsWriter replaces the stats sheet with the yearly breakdown.
	StatsWriter interface {
		WriteStats(ctx context.Context, stats core.CollectionStats) (rangeRef string, err error)
	}

	// DepotWriter replaces the depot sheet with the locomotive roster.
	DepotWriter interface {
		WriteDepot(ctx context.Context, depot core.Depot) (rangeRef string, err error)
	}

	ReportWriter interface {
		StatsWriter
		DepotWriter
	}
)
