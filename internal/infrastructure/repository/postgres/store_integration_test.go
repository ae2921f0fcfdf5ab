//go:build integration

package postgres_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/userstate"
	"github.com/riskibarqy/paddle-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
	"github.com/riskibarqy/paddle-league/internal/source"
	"github.com/riskibarqy/paddle-league/internal/usecase"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	initScript, err := filepath.Abs("../../../../db/migrations/000001_init.up.sql")
	require.NoError(t, err)

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("league"),
		tcpostgres.WithUsername("league"),
		tcpostgres.WithPassword("league"),
		tcpostgres.WithInitScripts(initScript),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixedLoader struct {
	bundle source.Bundle
}

func (l *fixedLoader) Load(context.Context, cycle.Scope, cycle.KindSet) (source.Bundle, error) {
	return l.bundle, nil
}

func team(label string) *string { return &label }

func nstf() source.League {
	return source.League{
		Code: "NSTF",
		Name: "North Shore Tennis",
		Players: []source.PlayerRecord{
			{FirstName: "Ross", LastName: "Freedman", PlayerID: "nndz-1", Club: "Tennaqua", Series: "Series 2B", Team: team("Tennaqua S2B")},
			{FirstName: "Jon", LastName: "Smith", PlayerID: "nndz-2", Club: "Tennaqua", Series: "Series 2B", Team: team("Tennaqua S2B")},
			{FirstName: "Al", LastName: "Winn", PlayerID: "nndz-3", Club: "Winnetka", Series: "Series 2B", Team: team("Winnetka S2B")},
			{FirstName: "Bo", LastName: "Winn", PlayerID: "nndz-4", Club: "Winnetka", Series: "Series 2B", Team: team("Winnetka S2B")},
		},
		PlayerIndexes: []int{0, 1, 2, 3},
		Matches: []source.MatchRecord{
			{
				Date: "08-Oct-24", HomeTeam: "Tennaqua S2B", AwayTeam: "Winnetka S2B",
				HomePlayer1ID: "nndz-1", HomePlayer2ID: "nndz-2", AwayPlayer1ID: "nndz-3", AwayPlayer2ID: "nndz-4",
				Scores: "6-4, 6-4", Winner: "home",
			},
			{
				Date: "08-Oct-24", HomeTeam: "Tennaqua S2B", AwayTeam: "Winnetka S2B",
				HomePlayer1ID: "nndz-1", HomePlayer2ID: "nndz-2", AwayPlayer1ID: "nndz-3", AwayPlayer2ID: "nndz-4",
				Scores: "3-6, 6-2, 1-0 [10-8]", Winner: "away",
			},
		},
		MatchIndexes: []int{0, 1},
	}
}

func TestImportCycle_Postgres(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	store := postgres.NewStore(db)

	svc := usecase.NewImportService(store, &fixedLoader{bundle: source.Bundle{Leagues: []source.League{nstf()}}},
		usecase.NewNamingBook(nil), usecase.ImportOptions{
			LockKey:           7001,
			HealthMinScore:    0.8,
			HealthMaxDropPct:  20,
			CourtFloor:        4,
			FactPhaseAttempts: 2,
		}, logging.NewNop())

	preflight, err := svc.Preflight(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"system_settings", "clubs.logo_filename"}, preflight.Created)

	report, err := svc.Run(ctx, usecase.RunInput{Scope: cycle.AllLeagues()})
	require.NoError(t, err)
	require.True(t, report.Committed)

	var playerID int64
	require.NoError(t, db.GetContext(ctx, &playerID, "SELECT id FROM players WHERE source_player_id = $1", "nndz-2"))

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UserState().InsertAssociation(ctx, userstate.Association{
		ID: 1, UserID: "user-a", LeagueCode: "NSTF", SourcePlayerID: "nndz-2", IsPrimary: true,
		PlayerID: &playerID, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, tx.Commit())

	report, err = svc.Run(ctx, usecase.RunInput{Scope: cycle.AllLeagues()})
	require.NoError(t, err)
	require.True(t, report.Committed)
	require.Zero(t, report.Resolver.Created.Total())
	require.Empty(t, report.Unresolved())

	var after int64
	require.NoError(t, db.GetContext(ctx, &after, "SELECT id FROM players WHERE source_player_id = $1", "nndz-2"))
	require.Equal(t, playerID, after)

	var linked int64
	require.NoError(t, db.GetContext(ctx, &linked, "SELECT player_id FROM user_player_associations WHERE user_id = $1", "user-a"))
	require.Equal(t, playerID, linked)

	var courts []int
	require.NoError(t, db.SelectContext(ctx, &courts, "SELECT court_number FROM match_scores ORDER BY id"))
	require.Equal(t, []int{1, 2}, courts)

	var slots string
	require.NoError(t, db.GetContext(ctx, &slots, "SELECT value FROM system_settings WHERE key = $1", "court_slots.NSTF"))
	require.Equal(t, "4", slots)
}

func TestStore_AdvisoryLockIsExclusive(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	store := postgres.NewStore(db)

	release, acquired, err := store.TryLock(ctx, 7002)
	require.NoError(t, err)
	require.True(t, acquired)

	_, acquired, err = store.TryLock(ctx, 7002)
	require.NoError(t, err)
	require.False(t, acquired)

	require.NoError(t, release(ctx))
	release, acquired, err = store.TryLock(ctx, 7002)
	require.NoError(t, err)
	require.True(t, acquired)
	require.NoError(t, release(ctx))
}

func TestStore_CountOrphansOnCleanSchema(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	tx, err := postgres.NewStore(db).Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	orphans, err := tx.CountOrphans(ctx, cycle.AllLeagues())
	require.NoError(t, err)
	require.Len(t, orphans, len(cycle.ForeignKeys))
	for key, n := range orphans {
		require.Zerof(t, n, "orphans for %s", key)
	}
}
