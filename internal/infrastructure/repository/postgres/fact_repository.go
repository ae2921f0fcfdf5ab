package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/paddle-league/internal/domain/match"
	"github.com/riskibarqy/paddle-league/internal/domain/schedule"
	"github.com/riskibarqy/paddle-league/internal/domain/standing"
	qb "github.com/riskibarqy/paddle-league/internal/platform/querybuilder"
)

type MatchRepository struct {
	tx *sqlx.Tx
}

func (r *MatchRepository) InsertBatch(ctx context.Context, items []match.Match) error {
	models := make([]matchScoreTableModel, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		models = append(models, matchScoreTableModel{
			LeagueID:      item.LeagueID,
			MatchDate:     item.MatchDate,
			HomeTeamID:    item.HomeTeamID,
			AwayTeamID:    item.AwayTeamID,
			HomeTeam:      item.HomeTeam,
			AwayTeam:      item.AwayTeam,
			HomePlayer1ID: item.HomePlayer1ID,
			HomePlayer2ID: item.HomePlayer2ID,
			AwayPlayer1ID: item.AwayPlayer1ID,
			AwayPlayer2ID: item.AwayPlayer2ID,
			Scores:        item.Scores,
			Winner:        string(item.Winner),
			CourtNumber:   item.CourtNumber,
			SourceMatchID: item.SourceMatchID,
		})
	}

	for _, batch := range chunks(models, insertBatchSize) {
		query, args, err := qb.InsertModels("match_scores", batch, "")
		if err != nil {
			return fmt.Errorf("build insert match scores query: %w", err)
		}
		if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert match scores: %w", err)
		}
	}
	return nil
}

func (r *MatchRepository) ListByLeague(ctx context.Context, leagueID int64) ([]match.Match, error) {
	b := qb.Select("*").From("match_scores").
		OrderBy("match_date", "home_team_id", "away_team_id", "court_number", "id")
	if leagueID != 0 {
		b.Where(qb.Eq("league_id", leagueID))
	}
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match scores query: %w", err)
	}

	var rows []matchScoreTableModel
	if err := r.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match scores: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.Match{
			ID:            row.ID,
			LeagueID:      row.LeagueID,
			MatchDate:     row.MatchDate,
			HomeTeamID:    row.HomeTeamID,
			AwayTeamID:    row.AwayTeamID,
			HomeTeam:      row.HomeTeam,
			AwayTeam:      row.AwayTeam,
			HomePlayer1ID: row.HomePlayer1ID,
			HomePlayer2ID: row.HomePlayer2ID,
			AwayPlayer1ID: row.AwayPlayer1ID,
			AwayPlayer2ID: row.AwayPlayer2ID,
			Scores:        row.Scores,
			Winner:        match.Side(row.Winner),
			CourtNumber:   row.CourtNumber,
			SourceMatchID: row.SourceMatchID,
		})
	}
	return out, nil
}

type ScheduleRepository struct {
	tx *sqlx.Tx
}

func (r *ScheduleRepository) InsertBatch(ctx context.Context, items []schedule.Entry) error {
	models := make([]scheduleTableModel, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		models = append(models, scheduleTableModel{
			LeagueID:   item.LeagueID,
			MatchDate:  item.MatchDate,
			MatchTime:  item.MatchTime,
			HomeTeamID: item.HomeTeamID,
			AwayTeamID: item.AwayTeamID,
			HomeTeam:   item.HomeTeam,
			AwayTeam:   item.AwayTeam,
			Location:   item.Location,
		})
	}

	for _, batch := range chunks(models, insertBatchSize) {
		query, args, err := qb.InsertModels("schedule", batch, "")
		if err != nil {
			return fmt.Errorf("build insert schedule query: %w", err)
		}
		if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
	}
	return nil
}

type StandingRepository struct {
	tx *sqlx.Tx
}

func (r *StandingRepository) InsertBatch(ctx context.Context, items []standing.SeriesStat) error {
	models := make([]seriesStatTableModel, 0, len(items))
	for _, item := range items {
		models = append(models, seriesStatTableModel{
			LeagueID:    item.LeagueID,
			SeriesID:    item.SeriesID,
			TeamID:      item.TeamID,
			Points:      item.Points,
			MatchesWon:  item.MatchesWon,
			MatchesLost: item.MatchesLost,
			MatchesTied: item.MatchesTied,
			LinesWon:    item.LinesWon,
			LinesLost:   item.LinesLost,
			SetsWon:     item.SetsWon,
			SetsLost:    item.SetsLost,
			GamesWon:    item.GamesWon,
			GamesLost:   item.GamesLost,
		})
	}

	for _, batch := range chunks(models, insertBatchSize) {
		query, args, err := qb.InsertModels("series_stats", batch, "")
		if err != nil {
			return fmt.Errorf("build insert series stats query: %w", err)
		}
		if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert series stats: %w", err)
		}
	}
	return nil
}
