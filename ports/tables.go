// Package ports defines the contracts between the analysis core and its
// collaborators: the tabular accessor that owns the source data, and the
// durable store behind the analysis cache.
package ports

import (
	"context"
	"time"

	"compendium/domain/catalog"
)

// TabularSource provides read-only access to the source tables by logical
// name. Implementations must tolerate missing optional columns by treating
// them as entirely absent. The freshness oracle drives cache invalidation.
type TabularSource interface {
	// Samples returns every sample row in the collection.
	Samples(ctx context.Context) ([]catalog.Sample, error)

	// Studies returns every study row.
	Studies(ctx context.Context) ([]catalog.Study, error)

	// Abundance returns the records of one chemical or taxonomic table.
	Abundance(ctx context.Context, table catalog.Table) ([]catalog.AbundanceRecord, error)

	// MaxModificationTime reports the latest modification time across the
	// named tables.
	MaxModificationTime(ctx context.Context, tables ...catalog.Table) (time.Time, error)
}
