package userstate

import "context"

// Repository reads and rewrites durable user-owned rows. An empty league code means every league.
type Repository interface {
	// Load returns rows in scope with natural keys refreshed from the current dimensions.
	Load(ctx context.Context, leagueCode string) (Snapshot, error)
	Count(ctx context.Context, leagueCode string) (int64, error)
	Delete(ctx context.Context, leagueCode string) (int64, error)
	InsertAssociation(ctx context.Context, item Association) error
	InsertContext(ctx context.Context, item LeagueContext) error
	InsertAvailability(ctx context.Context, item Availability) error
}
