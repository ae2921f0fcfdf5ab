package postgres

import "database/sql"

type leagueTableModel struct {
	ID   int64  `db:"id,omitzero"`
	Code string `db:"code"`
	Name string `db:"name"`
}

type clubTableModel struct {
	ID           int64  `db:"id,omitzero"`
	LeagueID     int64  `db:"league_id"`
	Name         string `db:"name"`
	Address      string `db:"address"`
	LogoFilename string `db:"logo_filename"`
}

type seriesTableModel struct {
	ID          int64  `db:"id,omitzero"`
	LeagueID    int64  `db:"league_id"`
	Name        string `db:"name"`
	DisplayName string `db:"display_name"`
}

type teamTableModel struct {
	ID          int64  `db:"id,omitzero"`
	LeagueID    int64  `db:"league_id"`
	ClubID      int64  `db:"club_id"`
	SeriesID    int64  `db:"series_id"`
	Label       string `db:"label"`
	DisplayName string `db:"display_name"`
}

type playerTableModel struct {
	ID             int64           `db:"id,omitzero"`
	LeagueID       int64           `db:"league_id"`
	SourcePlayerID string          `db:"source_player_id"`
	FirstName      string          `db:"first_name"`
	LastName       string          `db:"last_name"`
	ClubID         sql.NullInt64   `db:"club_id"`
	SeriesID       sql.NullInt64   `db:"series_id"`
	TeamID         sql.NullInt64   `db:"team_id"`
	IsActive       bool            `db:"is_active"`
	StartingRating sql.NullFloat64 `db:"starting_rating"`
	Wins           int             `db:"wins"`
	Losses         int             `db:"losses"`
}

// dimensionKeyRow is one natural to surrogate key pair read with its parents' names.
type dimensionKeyRow struct {
	ID         int64  `db:"id"`
	LeagueCode string `db:"league_code"`
	Club       string `db:"club"`
	Series     string `db:"series"`
	Name       string `db:"name"`
}
