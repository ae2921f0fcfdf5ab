package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/paddle-league/internal/domain/club"
	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/identity"
	"github.com/riskibarqy/paddle-league/internal/domain/league"
	"github.com/riskibarqy/paddle-league/internal/domain/match"
	"github.com/riskibarqy/paddle-league/internal/domain/player"
	"github.com/riskibarqy/paddle-league/internal/domain/schedule"
	"github.com/riskibarqy/paddle-league/internal/domain/series"
	"github.com/riskibarqy/paddle-league/internal/domain/standing"
	"github.com/riskibarqy/paddle-league/internal/domain/team"
	"github.com/riskibarqy/paddle-league/internal/domain/userstate"
	qb "github.com/riskibarqy/paddle-league/internal/platform/querybuilder"
)

// Store runs import cycles against PostgreSQL.
type Store struct {
	db     *sqlx.DB
	schema *SchemaInspector
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, schema: NewSchemaInspector(db)}
}

// TryLock takes a session advisory lock on a dedicated connection. The connection is held until
// release so the lock lives exactly as long as the run.
func (s *Store) TryLock(ctx context.Context, key int64) (func(context.Context) error, bool, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("open lock connection: %w", err)
	}

	var acquired bool
	if err := conn.GetContext(ctx, &acquired, "SELECT pg_try_advisory_lock($1)", key); err != nil {
		_ = conn.Close()
		return nil, false, fmt.Errorf("try advisory lock %d: %w", key, err)
	}
	if !acquired {
		_ = conn.Close()
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		defer conn.Close()
		if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", key); err != nil {
			return fmt.Errorf("release advisory lock %d: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}

func (s *Store) Begin(ctx context.Context) (cycle.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cycle transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (s *Store) Schema() cycle.SchemaInspector {
	return s.schema
}

// Tx is one cycle transaction. All repositories share it.
type Tx struct {
	tx *sqlx.Tx
}

func (t *Tx) Leagues() league.Repository { return &LeagueRepository{tx: t.tx} }
func (t *Tx) Clubs() club.Repository { return &ClubRepository{tx: t.tx} }
func (t *Tx) Series() series.Repository { return &SeriesRepository{tx: t.tx} }
func (t *Tx) Teams() team.Repository { return &TeamRepository{tx: t.tx} }
func (t *Tx) Players() player.Repository { return &PlayerRepository{tx: t.tx} }
func (t *Tx) Matches() match.Repository { return &MatchRepository{tx: t.tx} }
func (t *Tx) Schedules() schedule.Repository { return &ScheduleRepository{tx: t.tx} }
func (t *Tx) Standings() standing.Repository { return &StandingRepository{tx: t.tx} }
func (t *Tx) UserState() userstate.Repository { return &UserStateRepository{tx: t.tx} }
func (t *Tx) Settings() cycle.SettingsRepository { return &SettingsRepository{tx: t.tx} }

func (t *Tx) DimensionKeys(ctx context.Context, scope cycle.Scope) (identity.Prior, error) {
	out := identity.NewPrior()

	queries := []struct {
		name  string
		build *qb.SelectBuilder
		put   func(row dimensionKeyRow)
	}{
		{
			name:  "leagues",
			build: qb.Select("l.id", "l.code AS league_code", "l.code AS name").From("leagues l"),
			put:   func(row dimensionKeyRow) { out.Leagues[row.LeagueCode] = row.ID },
		},
		{
			name: "clubs",
			build: qb.Select("c.id", "l.code AS league_code", "c.name").
				From("clubs c JOIN leagues l ON l.id = c.league_id"),
			put: func(row dimensionKeyRow) {
				out.Clubs[identity.ClubKey{League: row.LeagueCode, Club: row.Name}] = row.ID
			},
		},
		{
			name: "series",
			build: qb.Select("s.id", "l.code AS league_code", "s.name").
				From("series s JOIN leagues l ON l.id = s.league_id"),
			put: func(row dimensionKeyRow) {
				out.Series[identity.SeriesKey{League: row.LeagueCode, Series: row.Name}] = row.ID
			},
		},
		{
			name: "teams",
			build: qb.Select("t.id", "l.code AS league_code", "c.name AS club", "s.name AS series", "t.label AS name").
				From(`teams t
JOIN leagues l ON l.id = t.league_id
JOIN clubs c ON c.id = t.club_id
JOIN series s ON s.id = t.series_id`),
			put: func(row dimensionKeyRow) {
				out.Teams[identity.TeamKey{League: row.LeagueCode, Club: row.Club, Series: row.Series, Label: row.Name}] = row.ID
			},
		},
		{
			name: "players",
			build: qb.Select("p.id", "l.code AS league_code", "p.source_player_id AS name").
				From("players p JOIN leagues l ON l.id = p.league_id"),
			put: func(row dimensionKeyRow) {
				out.Players[identity.PlayerKey{League: row.LeagueCode, SourceID: row.Name}] = row.ID
			},
		},
	}

	for _, q := range queries {
		if !scope.IsAll() {
			q.build.Where(qb.Eq("l.code", scope.LeagueCode))
		}
		query, args, err := q.build.ToSQL()
		if err != nil {
			return identity.Prior{}, fmt.Errorf("build %s keys query: %w", q.name, err)
		}
		var rows []dimensionKeyRow
		if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
			return identity.Prior{}, fmt.Errorf("select %s keys: %w", q.name, err)
		}
		for _, row := range rows {
			q.put(row)
		}
	}
	return out, nil
}

// Clear removes a table's rows in scope. A fact table cleared for every league is truncated
// with its identity restarted, so reruns on the same input produce the same ids.
func (t *Tx) Clear(ctx context.Context, scope cycle.Scope, table cycle.Table) error {
	switch table {
	case cycle.TableMatchScores, cycle.TableSchedule, cycle.TableSeriesStats,
		cycle.TablePlayers, cycle.TableTeams, cycle.TableSeries, cycle.TableClubs, cycle.TableLeagues:
	default:
		return fmt.Errorf("clear of %s is not supported", table)
	}

	if scope.IsAll() && table.IsFact() {
		query, _, err := qb.Truncate(string(table)).RestartIdentity().ToSQL()
		if err != nil {
			return fmt.Errorf("build truncate %s query: %w", table, err)
		}
		if _, err := t.tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
		return nil
	}

	query, args, err := qb.DeleteFrom(string(table)).Where(scopeConditions(table, scope)...).ToSQL()
	if err != nil {
		return fmt.Errorf("build clear %s query: %w", table, err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	return nil
}

// SetForeignKeyChecks toggles FK triggers for the rest of the transaction. Turning them off
// needs a role allowed to set session_replication_role.
func (t *Tx) SetForeignKeyChecks(ctx context.Context, enabled bool) error {
	role := "replica"
	if enabled {
		role = "DEFAULT"
	}
	if _, err := t.tx.ExecContext(ctx, "SET LOCAL session_replication_role = "+role); err != nil {
		return fmt.Errorf("set session_replication_role=%s: %w", role, err)
	}
	return nil
}

func (t *Tx) Savepoint(ctx context.Context, name string) error {
	query, err := qb.Savepoint(name)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	return nil
}

func (t *Tx) RollbackToSavepoint(ctx context.Context, name string) error {
	query, err := qb.RollbackToSavepoint(name)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("rollback to savepoint %s: %w", name, err)
	}
	return nil
}

func (t *Tx) CountRows(ctx context.Context, scope cycle.Scope) (cycle.TableCounts, error) {
	out := make(cycle.TableCounts, len(cycle.CountedTables))
	for _, table := range cycle.CountedTables {
		query, args, err := qb.Select("COUNT(*)").From(string(table)).
			Where(scopeConditions(table, scope)...).
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build count %s query: %w", table, err)
		}
		var n int64
		if err := t.tx.GetContext(ctx, &n, query, args...); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out[table] = n
	}
	return out, nil
}

// CountOrphans counts, per foreign key, rows in scope whose non-null reference has no parent.
func (t *Tx) CountOrphans(ctx context.Context, scope cycle.Scope) (map[string]int64, error) {
	out := make(map[string]int64, len(cycle.ForeignKeys))
	for _, fk := range cycle.ForeignKeys {
		conditions := append([]qb.Condition{
			qb.Expr(fmt.Sprintf("%s IS NOT NULL", fk.Column)),
			qb.Expr(fmt.Sprintf("NOT EXISTS (SELECT 1 FROM %s parent WHERE parent.id = child.%s)", fk.Parent, fk.Column)),
		}, scopeConditions(fk.Table, scope)...)

		query, args, err := qb.Select("COUNT(*)").From(string(fk.Table) + " child").
			Where(conditions...).
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build orphan %s query: %w", fk, err)
		}
		var n int64
		if err := t.tx.GetContext(ctx, &n, query, args...); err != nil {
			return nil, fmt.Errorf("count orphan %s: %w", fk, err)
		}
		out[fk.String()] = n
	}
	return out, nil
}

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit cycle transaction: %w", err)
	}
	return nil
}

// Rollback discards the transaction. After Commit it returns sql.ErrTxDone, which callers
// deferring it ignore.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
