package standing

// SeriesStat is the derived standings row of one team in its series.
type SeriesStat struct {
	ID          int64
	LeagueID    int64
	SeriesID    int64
	TeamID      int64
	Points      int
	MatchesWon  int
	MatchesLost int
	MatchesTied int
	LinesWon    int
	LinesLost   int
	SetsWon     int
	SetsLost    int
	GamesWon    int
	GamesLost   int
}
