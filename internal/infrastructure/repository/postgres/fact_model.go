package postgres

import "time"

type matchScoreTableModel struct {
	ID            int64     `db:"id,omitzero"`
	LeagueID      int64     `db:"league_id"`
	MatchDate     time.Time `db:"match_date"`
	HomeTeamID    int64     `db:"home_team_id"`
	AwayTeamID    int64     `db:"away_team_id"`
	HomeTeam      string    `db:"home_team"`
	AwayTeam      string    `db:"away_team"`
	HomePlayer1ID string    `db:"home_player_1_id"`
	HomePlayer2ID string    `db:"home_player_2_id"`
	AwayPlayer1ID string    `db:"away_player_1_id"`
	AwayPlayer2ID string    `db:"away_player_2_id"`
	Scores        string    `db:"scores"`
	Winner        string    `db:"winner"`
	CourtNumber   int       `db:"court_number"`
	SourceMatchID string    `db:"source_match_id"`
}

type scheduleTableModel struct {
	ID         int64     `db:"id,omitzero"`
	LeagueID   int64     `db:"league_id"`
	MatchDate  time.Time `db:"match_date"`
	MatchTime  string    `db:"match_time"`
	HomeTeamID int64     `db:"home_team_id"`
	AwayTeamID int64     `db:"away_team_id"`
	HomeTeam   string    `db:"home_team"`
	AwayTeam   string    `db:"away_team"`
	Location   string    `db:"location"`
}

type seriesStatTableModel struct {
	ID          int64 `db:"id,omitzero"`
	LeagueID    int64 `db:"league_id"`
	SeriesID    int64 `db:"series_id"`
	TeamID      int64 `db:"team_id"`
	Points      int   `db:"points"`
	MatchesWon  int   `db:"matches_won"`
	MatchesLost int   `db:"matches_lost"`
	MatchesTied int   `db:"matches_tied"`
	LinesWon    int   `db:"lines_won"`
	LinesLost   int   `db:"lines_lost"`
	SetsWon     int   `db:"sets_won"`
	SetsLost    int   `db:"sets_lost"`
	GamesWon    int   `db:"games_won"`
	GamesLost   int   `db:"games_lost"`
}
