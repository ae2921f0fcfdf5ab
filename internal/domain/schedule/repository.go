package schedule

import "context"

// Repository describes schedule persistence needs from use cases.
type Repository interface {
	InsertBatch(ctx context.Context, items []Entry) error
}
