package postgres

import (
	"database/sql"
	"errors"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	qb "github.com/riskibarqy/paddle-league/internal/platform/querybuilder"
)

// insertBatchSize keeps multi-row inserts well under the 65535 bind parameter limit.
const insertBatchSize = 500

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// scopeConditions restricts a table to the leagues of a scope. Durable rows carry the league
// code themselves; every other table points at leagues by id.
func scopeConditions(table cycle.Table, scope cycle.Scope) []qb.Condition {
	if scope.IsAll() {
		return nil
	}
	switch table {
	case cycle.TableLeagues:
		return []qb.Condition{qb.Eq("code", scope.LeagueCode)}
	case cycle.TableAssociations, cycle.TableContexts, cycle.TableAvailability:
		return []qb.Condition{qb.Eq("league_code", scope.LeagueCode)}
	default:
		return []qb.Condition{qb.Expr("league_id IN (SELECT id FROM leagues WHERE code = ?)", scope.LeagueCode)}
	}
}

// leagueCodeConditions filters durable rows by stored league code. Empty means every league.
func leagueCodeConditions(column, leagueCode string) []qb.Condition {
	scope := cycle.ForLeague(leagueCode)
	if scope.IsAll() {
		return nil
	}
	return []qb.Condition{qb.Eq(column, scope.LeagueCode)}
}

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
