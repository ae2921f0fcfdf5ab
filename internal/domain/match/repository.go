package match

import "context"

// Repository describes match persistence needs from use cases.
type Repository interface {
	InsertBatch(ctx context.Context, items []Match) error
	// ListByLeague returns lines ordered by date, teams and court. leagueID 0 lists every league.
	ListByLeague(ctx context.Context, leagueID int64) ([]Match, error)
}
