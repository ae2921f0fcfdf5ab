package usecase

import (
	"sort"
	"time"

	"github.com/riskibarqy/paddle-league/internal/domain/match"
	"github.com/riskibarqy/paddle-league/internal/domain/standing"
)

type meetingKey struct {
	leagueID int64
	date     time.Time
	home     int64
	away     int64
}

// BuildSeriesStats derives standings from match lines. A meeting is won by the team that
// wins more lines; every line won is worth one point. seriesOf maps team ids to series ids;
// teams missing from it are left out.
func BuildSeriesStats(lines []match.Match, seriesOf map[int64]int64) []standing.SeriesStat {
	type teamKey struct {
		leagueID int64
		teamID   int64
	}

	rows := make(map[teamKey]*standing.SeriesStat)
	row := func(leagueID, teamID int64) *standing.SeriesStat {
		key := teamKey{leagueID: leagueID, teamID: teamID}
		if existing, ok := rows[key]; ok {
			return existing
		}
		item := &standing.SeriesStat{LeagueID: leagueID, SeriesID: seriesOf[teamID], TeamID: teamID}
		rows[key] = item
		return item
	}

	meetings := make(map[meetingKey][2]int)
	for _, line := range lines {
		if _, ok := seriesOf[line.HomeTeamID]; !ok {
			continue
		}
		if _, ok := seriesOf[line.AwayTeamID]; !ok {
			continue
		}

		home := row(line.LeagueID, line.HomeTeamID)
		away := row(line.LeagueID, line.AwayTeamID)

		key := meetingKey{leagueID: line.LeagueID, date: line.MatchDate, home: line.HomeTeamID, away: line.AwayTeamID}
		tally := meetings[key]
		if line.Winner == match.SideHome {
			home.LinesWon++
			away.LinesLost++
			tally[0]++
		} else {
			away.LinesWon++
			home.LinesLost++
			tally[1]++
		}
		meetings[key] = tally

		if score, err := match.ParseScore(line.Scores); err == nil {
			hs, as := score.SetsWon()
			hg, ag := score.Games()
			home.SetsWon += hs
			home.SetsLost += as
			away.SetsWon += as
			away.SetsLost += hs
			home.GamesWon += hg
			home.GamesLost += ag
			away.GamesWon += ag
			away.GamesLost += hg
		}
	}

	for key, tally := range meetings {
		home := row(key.leagueID, key.home)
		away := row(key.leagueID, key.away)
		switch {
		case tally[0] > tally[1]:
			home.MatchesWon++
			away.MatchesLost++
		case tally[1] > tally[0]:
			away.MatchesWon++
			home.MatchesLost++
		default:
			home.MatchesTied++
			away.MatchesTied++
		}
	}

	out := make([]standing.SeriesStat, 0, len(rows))
	for _, item := range rows {
		item.Points = item.LinesWon
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LeagueID != out[j].LeagueID {
			return out[i].LeagueID < out[j].LeagueID
		}
		if out[i].SeriesID != out[j].SeriesID {
			return out[i].SeriesID < out[j].SeriesID
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}
