package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetBySourceID(ctx context.Context, leagueID int64, sourcePlayerID string) (Player, bool, error)
	Insert(ctx context.Context, item Player) (Player, error)
	// UpdateAttributes rewrites the non-identity columns of an existing player.
	UpdateAttributes(ctx context.Context, item Player) error
}
