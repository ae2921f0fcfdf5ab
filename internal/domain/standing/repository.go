package standing

import "context"

// Repository describes series stats persistence needs from use cases.
type Repository interface {
	InsertBatch(ctx context.Context, items []SeriesStat) error
}
