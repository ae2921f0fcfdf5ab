package usecase

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/riskibarqy/paddle-league/internal/domain/match"
	"github.com/riskibarqy/paddle-league/internal/domain/standing"
)

func TestBuildSeriesStats(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 10, 8, 0, 0, 0, 0, time.UTC)
	lines := []match.Match{
		{LeagueID: 1, MatchDate: date, HomeTeamID: 10, AwayTeamID: 20, Scores: "6-4, 6-4", Winner: match.SideHome, CourtNumber: 1},
		{LeagueID: 1, MatchDate: date, HomeTeamID: 10, AwayTeamID: 20, Scores: "4-6, 6-3, 1-0 [10-6]", Winner: match.SideHome, CourtNumber: 2},
		{LeagueID: 1, MatchDate: date, HomeTeamID: 10, AwayTeamID: 20, Scores: "2-6, 2-6", Winner: match.SideAway, CourtNumber: 3},
		{LeagueID: 1, MatchDate: date.AddDate(0, 0, 7), HomeTeamID: 20, AwayTeamID: 10, Scores: "6-0, 6-0", Winner: match.SideHome, CourtNumber: 1},
		{LeagueID: 1, MatchDate: date.AddDate(0, 0, 7), HomeTeamID: 20, AwayTeamID: 10, Scores: "0-6, 0-6", Winner: match.SideAway, CourtNumber: 2},
		{LeagueID: 1, MatchDate: date, HomeTeamID: 30, AwayTeamID: 99, Scores: "6-0, 6-0", Winner: match.SideHome, CourtNumber: 1},
	}

	got := BuildSeriesStats(lines, map[int64]int64{10: 5, 20: 5, 30: 5})
	want := []standing.SeriesStat{
		{
			LeagueID: 1, SeriesID: 5, TeamID: 10,
			Points: 3, MatchesWon: 1, MatchesLost: 0, MatchesTied: 1,
			LinesWon: 3, LinesLost: 2, SetsWon: 6, SetsLost: 5, GamesWon: 39, GamesLost: 41,
		},
		{
			LeagueID: 1, SeriesID: 5, TeamID: 20,
			Points: 2, MatchesWon: 0, MatchesLost: 1, MatchesTied: 1,
			LinesWon: 2, LinesLost: 3, SetsWon: 5, SetsLost: 6, GamesWon: 41, GamesLost: 39,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected stats (-want +got):\n%s", diff)
	}
}
