package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/paddle-league/internal/domain/club"
	"github.com/riskibarqy/paddle-league/internal/domain/league"
	"github.com/riskibarqy/paddle-league/internal/domain/player"
	"github.com/riskibarqy/paddle-league/internal/domain/series"
	"github.com/riskibarqy/paddle-league/internal/domain/team"
	qb "github.com/riskibarqy/paddle-league/internal/platform/querybuilder"
)

type LeagueRepository struct {
	tx *sqlx.Tx
}

func (r *LeagueRepository) GetByCode(ctx context.Context, code string) (league.League, bool, error) {
	query, args, err := qb.Select("id", "code", "name").From("leagues").
		Where(qb.Eq("code", code)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by code query: %w", err)
	}

	var row leagueTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by code: %w", err)
	}
	return league.League{ID: row.ID, Code: row.Code, Name: row.Name}, true, nil
}

func (r *LeagueRepository) Insert(ctx context.Context, item league.League) (league.League, error) {
	if err := item.Validate(); err != nil {
		return league.League{}, err
	}

	query, args, err := qb.InsertModel("leagues", leagueTableModel{ID: item.ID, Code: item.Code, Name: item.Name}, "RETURNING id")
	if err != nil {
		return league.League{}, fmt.Errorf("build insert league query: %w", err)
	}
	if err := r.tx.GetContext(ctx, &item.ID, query, args...); err != nil {
		return league.League{}, fmt.Errorf("insert league code=%s: %w", item.Code, err)
	}
	return item, nil
}

func (r *LeagueRepository) UpdateName(ctx context.Context, id int64, name string) error {
	query, args, err := qb.Update("leagues").Set("name", name).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update league name query: %w", err)
	}
	if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update league name id=%d: %w", id, err)
	}
	return nil
}

type ClubRepository struct {
	tx *sqlx.Tx
}

var clubSelectColumns = []string{
	"id",
	"league_id",
	"name",
	"address",
	"COALESCE(logo_filename, '') AS logo_filename",
}

func (r *ClubRepository) GetByName(ctx context.Context, leagueID int64, name string) (club.Club, bool, error) {
	query, args, err := qb.Select(clubSelectColumns...).From("clubs").
		Where(qb.Eq("league_id", leagueID), qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return club.Club{}, false, fmt.Errorf("build get club by name query: %w", err)
	}

	var row clubTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return club.Club{}, false, nil
		}
		return club.Club{}, false, fmt.Errorf("get club by name: %w", err)
	}
	return club.Club{
		ID:           row.ID,
		LeagueID:     row.LeagueID,
		Name:         row.Name,
		Address:      row.Address,
		LogoFilename: row.LogoFilename,
	}, true, nil
}

func (r *ClubRepository) Insert(ctx context.Context, item club.Club) (club.Club, error) {
	if err := item.Validate(); err != nil {
		return club.Club{}, err
	}

	model := clubTableModel{
		ID:           item.ID,
		LeagueID:     item.LeagueID,
		Name:         item.Name,
		Address:      item.Address,
		LogoFilename: item.LogoFilename,
	}
	query, args, err := qb.InsertModel("clubs", model, "RETURNING id")
	if err != nil {
		return club.Club{}, fmt.Errorf("build insert club query: %w", err)
	}
	if err := r.tx.GetContext(ctx, &item.ID, query, args...); err != nil {
		return club.Club{}, fmt.Errorf("insert club name=%s: %w", item.Name, err)
	}
	return item, nil
}

type SeriesRepository struct {
	tx *sqlx.Tx
}

func (r *SeriesRepository) GetByName(ctx context.Context, leagueID int64, name string) (series.Series, bool, error) {
	query, args, err := qb.Select("id", "league_id", "name", "display_name").From("series").
		Where(qb.Eq("league_id", leagueID), qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return series.Series{}, false, fmt.Errorf("build get series by name query: %w", err)
	}

	var row seriesTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return series.Series{}, false, nil
		}
		return series.Series{}, false, fmt.Errorf("get series by name: %w", err)
	}
	return series.Series{ID: row.ID, LeagueID: row.LeagueID, Name: row.Name, DisplayName: row.DisplayName}, true, nil
}

func (r *SeriesRepository) Insert(ctx context.Context, item series.Series) (series.Series, error) {
	if err := item.Validate(); err != nil {
		return series.Series{}, err
	}

	model := seriesTableModel{ID: item.ID, LeagueID: item.LeagueID, Name: item.Name, DisplayName: item.DisplayName}
	query, args, err := qb.InsertModel("series", model, "RETURNING id")
	if err != nil {
		return series.Series{}, fmt.Errorf("build insert series query: %w", err)
	}
	if err := r.tx.GetContext(ctx, &item.ID, query, args...); err != nil {
		return series.Series{}, fmt.Errorf("insert series name=%s: %w", item.Name, err)
	}
	return item, nil
}

func (r *SeriesRepository) UpdateDisplayName(ctx context.Context, id int64, displayName string) error {
	query, args, err := qb.Update("series").Set("display_name", displayName).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update series display name query: %w", err)
	}
	if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update series display name id=%d: %w", id, err)
	}
	return nil
}

type TeamRepository struct {
	tx *sqlx.Tx
}

var teamSelectColumns = []string{"id", "league_id", "club_id", "series_id", "label", "display_name"}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	query, args, err := qb.Select(teamSelectColumns...).From("teams").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by id query: %w", err)
	}
	return r.get(ctx, query, args)
}

func (r *TeamRepository) GetByKey(ctx context.Context, leagueID, clubID, seriesID int64, label string) (team.Team, bool, error) {
	query, args, err := qb.Select(teamSelectColumns...).From("teams").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("club_id", clubID),
			qb.Eq("series_id", seriesID),
			qb.Eq("label", label),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by key query: %w", err)
	}
	return r.get(ctx, query, args)
}

func (r *TeamRepository) get(ctx context.Context, query string, args []any) (team.Team, bool, error) {
	var row teamTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team: %w", err)
	}
	return team.Team{
		ID:          row.ID,
		LeagueID:    row.LeagueID,
		ClubID:      row.ClubID,
		SeriesID:    row.SeriesID,
		Label:       row.Label,
		DisplayName: row.DisplayName,
	}, true, nil
}

func (r *TeamRepository) Insert(ctx context.Context, item team.Team) (team.Team, error) {
	if err := item.Validate(); err != nil {
		return team.Team{}, err
	}

	model := teamTableModel{
		ID:          item.ID,
		LeagueID:    item.LeagueID,
		ClubID:      item.ClubID,
		SeriesID:    item.SeriesID,
		Label:       item.Label,
		DisplayName: item.DisplayName,
	}
	query, args, err := qb.InsertModel("teams", model, "RETURNING id")
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team query: %w", err)
	}
	if err := r.tx.GetContext(ctx, &item.ID, query, args...); err != nil {
		return team.Team{}, fmt.Errorf("insert team label=%s: %w", item.Label, err)
	}
	return item, nil
}

func (r *TeamRepository) UpdateDisplayName(ctx context.Context, id int64, displayName string) error {
	query, args, err := qb.Update("teams").Set("display_name", displayName).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update team display name query: %w", err)
	}
	if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team display name id=%d: %w", id, err)
	}
	return nil
}

type PlayerRepository struct {
	tx *sqlx.Tx
}

var playerSelectColumns = []string{
	"id",
	"league_id",
	"source_player_id",
	"first_name",
	"last_name",
	"club_id",
	"series_id",
	"team_id",
	"is_active",
	"starting_rating",
	"wins",
	"losses",
}

func (r *PlayerRepository) GetBySourceID(ctx context.Context, leagueID int64, sourcePlayerID string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Eq("league_id", leagueID), qb.Eq("source_player_id", sourcePlayerID)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player by source id query: %w", err)
	}

	var row playerTableModel
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by source id: %w", err)
	}

	out := player.Player{
		ID:             row.ID,
		LeagueID:       row.LeagueID,
		SourcePlayerID: row.SourcePlayerID,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		ClubID:         row.ClubID.Int64,
		SeriesID:       row.SeriesID.Int64,
		TeamID:         row.TeamID.Int64,
		IsActive:       row.IsActive,
		Wins:           row.Wins,
		Losses:         row.Losses,
	}
	if row.StartingRating.Valid {
		rating := row.StartingRating.Float64
		out.StartingRating = &rating
	}
	return out, true, nil
}

func (r *PlayerRepository) Insert(ctx context.Context, item player.Player) (player.Player, error) {
	if err := item.Validate(); err != nil {
		return player.Player{}, err
	}

	query, args, err := qb.InsertModel("players", playerModel(item), "RETURNING id")
	if err != nil {
		return player.Player{}, fmt.Errorf("build insert player query: %w", err)
	}
	if err := r.tx.GetContext(ctx, &item.ID, query, args...); err != nil {
		return player.Player{}, fmt.Errorf("insert player source_id=%s: %w", item.SourcePlayerID, err)
	}
	return item, nil
}

func (r *PlayerRepository) UpdateAttributes(ctx context.Context, item player.Player) error {
	model := playerModel(item)
	query, args, err := qb.Update("players").
		Set("first_name", model.FirstName).
		Set("last_name", model.LastName).
		Set("club_id", model.ClubID).
		Set("series_id", model.SeriesID).
		Set("team_id", model.TeamID).
		Set("is_active", model.IsActive).
		Set("starting_rating", model.StartingRating).
		Set("wins", model.Wins).
		Set("losses", model.Losses).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player query: %w", err)
	}
	if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update player id=%d: %w", item.ID, err)
	}
	return nil
}

func playerModel(item player.Player) playerTableModel {
	model := playerTableModel{
		ID:             item.ID,
		LeagueID:       item.LeagueID,
		SourcePlayerID: item.SourcePlayerID,
		FirstName:      item.FirstName,
		LastName:       item.LastName,
		ClubID:         nullInt64(item.ClubID),
		SeriesID:       nullInt64(item.SeriesID),
		TeamID:         nullInt64(item.TeamID),
		IsActive:       item.IsActive,
		Wins:           item.Wins,
		Losses:         item.Losses,
	}
	if item.StartingRating != nil {
		model.StartingRating = sql.NullFloat64{Float64: *item.StartingRating, Valid: true}
	}
	return model
}
