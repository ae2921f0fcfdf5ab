package club

import "context"

// Repository describes club persistence needs from use cases.
type Repository interface {
	GetByName(ctx context.Context, leagueID int64, name string) (Club, bool, error)
	Insert(ctx context.Context, item Club) (Club, error)
}
