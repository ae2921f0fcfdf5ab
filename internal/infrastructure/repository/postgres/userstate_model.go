package postgres

import (
	"database/sql"
	"time"
)

type associationTableModel struct {
	ID             int64         `db:"id,omitzero"`
	UserID         string        `db:"user_id"`
	LeagueCode     string        `db:"league_code"`
	SourcePlayerID string        `db:"source_player_id"`
	IsPrimary      bool          `db:"is_primary"`
	PlayerID       sql.NullInt64 `db:"player_id"`
	ClubID         sql.NullInt64 `db:"club_id"`
	NeedsReview    bool          `db:"needs_review"`
	CreatedAt      time.Time     `db:"created_at,omitzero"`
}

type userContextTableModel struct {
	ID          int64         `db:"id,omitzero"`
	UserID      string        `db:"user_id"`
	LeagueCode  string        `db:"league_code"`
	ClubName    string        `db:"club_name"`
	SeriesName  string        `db:"series_name"`
	TeamLabel   string        `db:"team_label"`
	LeagueID    sql.NullInt64 `db:"league_id"`
	TeamID      sql.NullInt64 `db:"team_id"`
	NeedsReview bool          `db:"needs_review"`
	CreatedAt   time.Time     `db:"created_at,omitzero"`
}

type availabilityTableModel struct {
	ID             int64         `db:"id,omitzero"`
	UserID         string        `db:"user_id"`
	LeagueCode     string        `db:"league_code"`
	SourcePlayerID string        `db:"source_player_id"`
	SeriesName     string        `db:"series_name"`
	MatchDate      time.Time     `db:"match_date"`
	Status         string        `db:"status"`
	Notes          string        `db:"notes"`
	PlayerID       sql.NullInt64 `db:"player_id"`
	SeriesID       sql.NullInt64 `db:"series_id"`
	NeedsReview    bool          `db:"needs_review"`
	CreatedAt      time.Time     `db:"created_at,omitzero"`
}

func nullToPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func ptrToNull(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
