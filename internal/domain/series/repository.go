package series

import "context"

// Repository describes series persistence needs from use cases.
type Repository interface {
	GetByName(ctx context.Context, leagueID int64, name string) (Series, bool, error)
	Insert(ctx context.Context, item Series) (Series, error)
	UpdateDisplayName(ctx context.Context, id int64, displayName string) error
}
