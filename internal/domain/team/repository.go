package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Team, bool, error)
	GetByKey(ctx context.Context, leagueID, clubID, seriesID int64, label string) (Team, bool, error)
	Insert(ctx context.Context, item Team) (Team, error)
	UpdateDisplayName(ctx context.Context, id int64, displayName string) error
}
