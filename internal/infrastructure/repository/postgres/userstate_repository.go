package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/paddle-league/internal/domain/userstate"
	qb "github.com/riskibarqy/paddle-league/internal/platform/querybuilder"
)

type UserStateRepository struct {
	tx *sqlx.Tx
}

// Natural keys come from the linked dimension rows when they still exist and fall back to the
// key columns stored on the durable row.
var (
	associationLoadColumns = []string{
		"a.id",
		"a.user_id",
		"COALESCE(l.code, a.league_code) AS league_code",
		"COALESCE(p.source_player_id, a.source_player_id) AS source_player_id",
		"a.is_primary",
		"a.player_id",
		"a.club_id",
		"a.needs_review",
		"a.created_at",
	}
	contextLoadColumns = []string{
		"c.id",
		"c.user_id",
		"COALESCE(l.code, c.league_code) AS league_code",
		"COALESCE(cl.name, c.club_name) AS club_name",
		"COALESCE(s.name, c.series_name) AS series_name",
		"COALESCE(t.label, c.team_label) AS team_label",
		"c.league_id",
		"c.team_id",
		"c.needs_review",
		"c.created_at",
	}
	availabilityLoadColumns = []string{
		"a.id",
		"a.user_id",
		"COALESCE(l.code, a.league_code) AS league_code",
		"COALESCE(p.source_player_id, a.source_player_id) AS source_player_id",
		"COALESCE(s.name, a.series_name) AS series_name",
		"a.match_date",
		"a.status",
		"a.notes",
		"a.player_id",
		"a.series_id",
		"a.needs_review",
		"a.created_at",
	}
)

const (
	associationLoadFrom = `user_player_associations a
LEFT JOIN players p ON p.id = a.player_id
LEFT JOIN leagues l ON l.id = p.league_id`
	contextLoadFrom = `user_contexts c
LEFT JOIN leagues l ON l.id = c.league_id
LEFT JOIN teams t ON t.id = c.team_id
LEFT JOIN clubs cl ON cl.id = t.club_id
LEFT JOIN series s ON s.id = t.series_id`
	availabilityLoadFrom = `player_availability a
LEFT JOIN players p ON p.id = a.player_id
LEFT JOIN leagues l ON l.id = p.league_id
LEFT JOIN series s ON s.id = a.series_id`
)

func (r *UserStateRepository) Load(ctx context.Context, leagueCode string) (userstate.Snapshot, error) {
	var out userstate.Snapshot

	query, args, err := qb.Select(associationLoadColumns...).From(associationLoadFrom).
		Where(leagueCodeConditions("a.league_code", leagueCode)...).
		OrderBy("a.id").
		ToSQL()
	if err != nil {
		return out, fmt.Errorf("build load associations query: %w", err)
	}
	var associations []associationTableModel
	if err := r.tx.SelectContext(ctx, &associations, query, args...); err != nil {
		return out, fmt.Errorf("load associations: %w", err)
	}
	for _, row := range associations {
		out.Associations = append(out.Associations, userstate.Association{
			ID:             row.ID,
			UserID:         row.UserID,
			LeagueCode:     row.LeagueCode,
			SourcePlayerID: row.SourcePlayerID,
			IsPrimary:      row.IsPrimary,
			PlayerID:       nullToPtr(row.PlayerID),
			ClubID:         nullToPtr(row.ClubID),
			NeedsReview:    row.NeedsReview,
			CreatedAt:      row.CreatedAt,
		})
	}

	query, args, err = qb.Select(contextLoadColumns...).From(contextLoadFrom).
		Where(leagueCodeConditions("c.league_code", leagueCode)...).
		OrderBy("c.id").
		ToSQL()
	if err != nil {
		return out, fmt.Errorf("build load user contexts query: %w", err)
	}
	var contexts []userContextTableModel
	if err := r.tx.SelectContext(ctx, &contexts, query, args...); err != nil {
		return out, fmt.Errorf("load user contexts: %w", err)
	}
	for _, row := range contexts {
		out.Contexts = append(out.Contexts, userstate.LeagueContext{
			ID:          row.ID,
			UserID:      row.UserID,
			LeagueCode:  row.LeagueCode,
			ClubName:    row.ClubName,
			SeriesName:  row.SeriesName,
			TeamLabel:   row.TeamLabel,
			LeagueID:    nullToPtr(row.LeagueID),
			TeamID:      nullToPtr(row.TeamID),
			NeedsReview: row.NeedsReview,
			CreatedAt:   row.CreatedAt,
		})
	}

	query, args, err = qb.Select(availabilityLoadColumns...).From(availabilityLoadFrom).
		Where(leagueCodeConditions("a.league_code", leagueCode)...).
		OrderBy("a.id").
		ToSQL()
	if err != nil {
		return out, fmt.Errorf("build load availability query: %w", err)
	}
	var availability []availabilityTableModel
	if err := r.tx.SelectContext(ctx, &availability, query, args...); err != nil {
		return out, fmt.Errorf("load availability: %w", err)
	}
	for _, row := range availability {
		out.Availability = append(out.Availability, userstate.Availability{
			ID:             row.ID,
			UserID:         row.UserID,
			LeagueCode:     row.LeagueCode,
			SourcePlayerID: row.SourcePlayerID,
			SeriesName:     row.SeriesName,
			MatchDate:      row.MatchDate,
			Status:         row.Status,
			Notes:          row.Notes,
			PlayerID:       nullToPtr(row.PlayerID),
			SeriesID:       nullToPtr(row.SeriesID),
			NeedsReview:    row.NeedsReview,
			CreatedAt:      row.CreatedAt,
		})
	}
	return out, nil
}

var durableTables = []string{
	userstate.TableAssociations,
	userstate.TableContexts,
	userstate.TableAvailability,
}

func (r *UserStateRepository) Count(ctx context.Context, leagueCode string) (int64, error) {
	var total int64
	for _, table := range durableTables {
		query, args, err := qb.Select("COUNT(*)").From(table).
			Where(leagueCodeConditions("league_code", leagueCode)...).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build count %s query: %w", table, err)
		}
		var n int64
		if err := r.tx.GetContext(ctx, &n, query, args...); err != nil {
			return 0, fmt.Errorf("count %s: %w", table, err)
		}
		total += n
	}
	return total, nil
}

func (r *UserStateRepository) Delete(ctx context.Context, leagueCode string) (int64, error) {
	var total int64
	for _, table := range durableTables {
		query, args, err := qb.DeleteFrom(table).
			Where(leagueCodeConditions("league_code", leagueCode)...).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build delete %s query: %w", table, err)
		}
		res, err := r.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("delete %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("delete %s rows affected: %w", table, err)
		}
		total += n
	}
	return total, nil
}

func (r *UserStateRepository) InsertAssociation(ctx context.Context, item userstate.Association) error {
	model := associationTableModel{
		ID:             item.ID,
		UserID:         item.UserID,
		LeagueCode:     item.LeagueCode,
		SourcePlayerID: item.SourcePlayerID,
		IsPrimary:      item.IsPrimary,
		PlayerID:       ptrToNull(item.PlayerID),
		ClubID:         ptrToNull(item.ClubID),
		NeedsReview:    item.NeedsReview,
		CreatedAt:      item.CreatedAt,
	}
	return r.insert(ctx, userstate.TableAssociations, model, item.ID)
}

func (r *UserStateRepository) InsertContext(ctx context.Context, item userstate.LeagueContext) error {
	model := userContextTableModel{
		ID:          item.ID,
		UserID:      item.UserID,
		LeagueCode:  item.LeagueCode,
		ClubName:    item.ClubName,
		SeriesName:  item.SeriesName,
		TeamLabel:   item.TeamLabel,
		LeagueID:    ptrToNull(item.LeagueID),
		TeamID:      ptrToNull(item.TeamID),
		NeedsReview: item.NeedsReview,
		CreatedAt:   item.CreatedAt,
	}
	return r.insert(ctx, userstate.TableContexts, model, item.ID)
}

func (r *UserStateRepository) InsertAvailability(ctx context.Context, item userstate.Availability) error {
	model := availabilityTableModel{
		ID:             item.ID,
		UserID:         item.UserID,
		LeagueCode:     item.LeagueCode,
		SourcePlayerID: item.SourcePlayerID,
		SeriesName:     item.SeriesName,
		MatchDate:      item.MatchDate,
		Status:         item.Status,
		Notes:          item.Notes,
		PlayerID:       ptrToNull(item.PlayerID),
		SeriesID:       ptrToNull(item.SeriesID),
		NeedsReview:    item.NeedsReview,
		CreatedAt:      item.CreatedAt,
	}
	return r.insert(ctx, userstate.TableAvailability, model, item.ID)
}

func (r *UserStateRepository) insert(ctx context.Context, table string, model any, id int64) error {
	query, args, err := qb.InsertModel(table, model, "")
	if err != nil {
		return fmt.Errorf("build insert %s query: %w", table, err)
	}
	if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s id=%d: %w", table, id, err)
	}
	return nil
}
