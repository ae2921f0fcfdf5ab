package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
)

// RequiredColumns is every column the engine reads or writes, in table order. A missing entry
// is a structural mismatch and aborts the run before anything is cleared. clubs.logo_filename
// is absent on purpose: preflight adds it.
var RequiredColumns = columnsOf([]tableColumns{
	{"leagues", []string{"id", "code", "name"}},
	{"clubs", []string{"id", "league_id", "name", "address"}},
	{"series", []string{"id", "league_id", "name", "display_name"}},
	{"teams", []string{"id", "league_id", "club_id", "series_id", "label", "display_name"}},
	{"players", []string{
		"id", "league_id", "source_player_id", "first_name", "last_name", "club_id", "series_id",
		"team_id", "is_active", "starting_rating", "wins", "losses",
	}},
	{"match_scores", []string{
		"id", "league_id", "match_date", "home_team_id", "away_team_id", "home_team", "away_team",
		"home_player_1_id", "home_player_2_id", "away_player_1_id", "away_player_2_id",
		"scores", "winner", "court_number", "source_match_id",
	}},
	{"schedule", []string{
		"id", "league_id", "match_date", "match_time", "home_team_id", "away_team_id",
		"home_team", "away_team", "location",
	}},
	{"series_stats", []string{
		"id", "league_id", "series_id", "team_id", "points", "matches_won", "matches_lost",
		"matches_tied", "lines_won", "lines_lost", "sets_won", "sets_lost", "games_won", "games_lost",
	}},
	{"user_player_associations", []string{
		"id", "user_id", "league_code", "source_player_id", "is_primary", "player_id", "club_id",
		"needs_review", "created_at",
	}},
	{"user_contexts", []string{
		"id", "user_id", "league_code", "club_name", "series_name", "team_label", "league_id",
		"team_id", "needs_review", "created_at",
	}},
	{"player_availability", []string{
		"id", "user_id", "league_code", "source_player_id", "series_name", "match_date", "status",
		"notes", "player_id", "series_id", "needs_review", "created_at",
	}},
})

type tableColumns struct {
	table   string
	columns []string
}

func columnsOf(tables []tableColumns) []cycle.Column {
	var out []cycle.Column
	for _, t := range tables {
		for _, col := range t.columns {
			out = append(out, cycle.Column{Table: t.table, Column: col})
		}
	}
	return out
}

// PreflightResult lists the additive artifacts created by a preflight.
type PreflightResult struct {
	Checked []cycle.Column
	Created []string
}

// SchemaPreflight verifies the relational schema before anything destructive runs.
type SchemaPreflight struct {
	schema   cycle.SchemaInspector
	required []cycle.Column
	logger   *logging.Logger
}

func NewSchemaPreflight(schema cycle.SchemaInspector, logger *logging.Logger) *SchemaPreflight {
	if logger == nil {
		logger = logging.Default()
	}
	return &SchemaPreflight{schema: schema, required: RequiredColumns, logger: logger}
}

// Check aborts with ErrSchemaMismatch when a required column is missing. Only then does it
// create the settings table and the club logo column, each after an existence check.
func (p *SchemaPreflight) Check(ctx context.Context) (PreflightResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchemaPreflight.Check")
	defer span.End()

	result := PreflightResult{Checked: p.required}

	missing, err := p.schema.MissingColumns(ctx, p.required)
	if err != nil {
		return result, errors.Wrap(err, "inspect schema")
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, col := range missing {
			names = append(names, col.String())
		}
		err := errors.Wrapf(ErrSchemaMismatch, "missing %d required columns", len(missing))
		err = errors.WithDetail(err, strings.Join(names, ", "))
		return result, errors.WithHint(err, "apply the schema with `migration up` before importing")
	}

	exists, err := p.schema.TableExists(ctx, string(cycle.TableSettings))
	if err != nil {
		return result, errors.Wrap(err, "check settings table")
	}
	if !exists {
		if err := p.schema.CreateSettingsTable(ctx); err != nil {
			return result, errors.Wrap(err, "create settings table")
		}
		result.Created = append(result.Created, string(cycle.TableSettings))
	}

	exists, err = p.schema.ColumnExists(ctx, string(cycle.TableClubs), "logo_filename")
	if err != nil {
		return result, errors.Wrap(err, "check club logo column")
	}
	if !exists {
		if err := p.schema.AddClubLogoColumn(ctx); err != nil {
			return result, errors.Wrap(err, "add club logo column")
		}
		result.Created = append(result.Created, "clubs.logo_filename")
	}

	p.logger.InfoContext(ctx, "schema preflight passed",
		"checked_columns", len(result.Checked),
		"created", strings.Join(result.Created, ","),
	)
	return result, nil
}
