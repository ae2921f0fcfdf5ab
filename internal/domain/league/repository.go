package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	GetByCode(ctx context.Context, code string) (League, bool, error)
	// Insert stores the league. A non-zero ID is written as given.
	Insert(ctx context.Context, item League) (League, error)
	UpdateName(ctx context.Context, id int64, name string) error
}
