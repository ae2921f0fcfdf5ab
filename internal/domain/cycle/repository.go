package cycle

import (
	"context"

	"github.com/riskibarqy/paddle-league/internal/domain/club"
	"github.com/riskibarqy/paddle-league/internal/domain/identity"
	"github.com/riskibarqy/paddle-league/internal/domain/league"
	"github.com/riskibarqy/paddle-league/internal/domain/match"
	"github.com/riskibarqy/paddle-league/internal/domain/player"
	"github.com/riskibarqy/paddle-league/internal/domain/schedule"
	"github.com/riskibarqy/paddle-league/internal/domain/series"
	"github.com/riskibarqy/paddle-league/internal/domain/standing"
	"github.com/riskibarqy/paddle-league/internal/domain/team"
	"github.com/riskibarqy/paddle-league/internal/domain/userstate"
)

// Store is the relational store an import cycle runs against.
type Store interface {
	// TryLock takes the process-wide run lock without waiting.
	TryLock(ctx context.Context, key int64) (release func(context.Context) error, acquired bool, err error)
	Begin(ctx context.Context) (Tx, error)
	Schema() SchemaInspector
}

// Tx is one cycle transaction. Repositories returned by it share the transaction.
type Tx interface {
	Leagues() league.Repository
	Clubs() club.Repository
	Series() series.Repository
	Teams() team.Repository
	Players() player.Repository
	Matches() match.Repository
	Schedules() schedule.Repository
	Standings() standing.Repository
	UserState() userstate.Repository
	Settings() SettingsRepository

	// DimensionKeys captures natural to surrogate keys of every dimension row in scope.
	DimensionKeys(ctx context.Context, scope Scope) (identity.Prior, error)
	// Clear removes the rows of one fact or dimension table in scope.
	Clear(ctx context.Context, scope Scope, table Table) error
	SetForeignKeyChecks(ctx context.Context, enabled bool) error
	Savepoint(ctx context.Context, name string) error
	RollbackToSavepoint(ctx context.Context, name string) error
	CountRows(ctx context.Context, scope Scope) (TableCounts, error)
	CountOrphans(ctx context.Context, scope Scope) (map[string]int64, error)

	Commit() error
	Rollback() error
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// SchemaInspector answers existence questions about the relational schema.
type SchemaInspector interface {
	MissingColumns(ctx context.Context, columns []Column) ([]Column, error)
	TableExists(ctx context.Context, table string) (bool, error)
	ColumnExists(ctx context.Context, table, column string) (bool, error)
	CreateSettingsTable(ctx context.Context) error
	AddClubLogoColumn(ctx context.Context) error
}
