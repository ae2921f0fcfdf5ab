package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/paddle-league/internal/domain/club"
	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/identity"
	"github.com/riskibarqy/paddle-league/internal/domain/league"
	"github.com/riskibarqy/paddle-league/internal/domain/player"
	"github.com/riskibarqy/paddle-league/internal/domain/series"
	"github.com/riskibarqy/paddle-league/internal/domain/team"
	"github.com/riskibarqy/paddle-league/internal/domain/userstate"
)

func seedLeague(t *testing.T, ctx context.Context, tx cycle.Tx) (league.League, team.Team, player.Player) {
	t.Helper()

	lg, err := tx.Leagues().Insert(ctx, league.League{Code: "NSTF", Name: "North Shore Tennis"})
	require.NoError(t, err)
	cl, err := tx.Clubs().Insert(ctx, club.Club{LeagueID: lg.ID, Name: "Tennaqua"})
	require.NoError(t, err)
	sr, err := tx.Series().Insert(ctx, series.Series{LeagueID: lg.ID, Name: "Series 2B"})
	require.NoError(t, err)
	tm, err := tx.Teams().Insert(ctx, team.Team{LeagueID: lg.ID, ClubID: cl.ID, SeriesID: sr.ID, Label: "Tennaqua S2B"})
	require.NoError(t, err)
	pl, err := tx.Players().Insert(ctx, player.Player{
		LeagueID: lg.ID, SourcePlayerID: "nndz-1", FirstName: "Ross", LastName: "Freedman",
		ClubID: cl.ID, SeriesID: sr.ID, TeamID: tm.ID, IsActive: true,
	})
	require.NoError(t, err)
	return lg, tm, pl
}

func TestStore_RollbackDiscardsWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	seedLeague(t, ctx, tx)
	require.NoError(t, tx.Rollback())

	require.Empty(t, store.Dump().Leagues)
	require.Empty(t, store.Dump().Players)
}

func TestStore_SavepointRestoresState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	lg, _, _ := seedLeague(t, ctx, tx)
	require.NoError(t, tx.Savepoint(ctx, "dims"))

	_, err = tx.Clubs().Insert(ctx, club.Club{LeagueID: lg.ID, Name: "Evanston"})
	require.NoError(t, err)
	require.NoError(t, tx.RollbackToSavepoint(ctx, "dims"))
	require.Error(t, tx.RollbackToSavepoint(ctx, "missing"))
	require.NoError(t, tx.Commit())

	require.Len(t, store.Dump().Clubs, 1)
	require.Error(t, tx.Commit())
}

func TestStore_DimensionKeysAndExplicitIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	lg, tm, pl := seedLeague(t, ctx, tx)

	prior, err := tx.DimensionKeys(ctx, cycle.ForLeague("nstf"))
	require.NoError(t, err)
	require.Equal(t, 5, prior.Len())
	require.Equal(t, lg.ID, prior.Leagues["NSTF"])
	require.Equal(t, tm.ID, prior.Teams[identity.TeamKey{League: "NSTF", Club: "Tennaqua", Series: "Series 2B", Label: "Tennaqua S2B"}])
	require.Equal(t, pl.ID, prior.Players[identity.PlayerKey{League: "NSTF", SourceID: "nndz-1"}])

	other, err := tx.DimensionKeys(ctx, cycle.ForLeague("APTA_CHICAGO"))
	require.NoError(t, err)
	require.Zero(t, other.Len())

	for _, table := range cycle.DimensionTables {
		require.NoError(t, tx.Clear(ctx, cycle.AllLeagues(), table))
	}
	again, err := tx.Leagues().Insert(ctx, league.League{ID: lg.ID, Code: "NSTF", Name: "North Shore Tennis"})
	require.NoError(t, err)
	require.Equal(t, lg.ID, again.ID)

	fresh, err := tx.Leagues().Insert(ctx, league.League{Code: "CNSWPL", Name: "Chicago North Shore Women"})
	require.NoError(t, err)
	require.Greater(t, fresh.ID, lg.ID)
}

func TestStore_CountOrphansAndUserStateLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	lg, tm, pl := seedLeague(t, ctx, tx)

	stale := int64(999)
	require.NoError(t, tx.UserState().InsertAssociation(ctx, userstate.Association{
		UserID: "u1", LeagueCode: "NSTF", SourcePlayerID: "old-id", PlayerID: &pl.ID,
	}))
	require.NoError(t, tx.UserState().InsertContext(ctx, userstate.LeagueContext{
		UserID: "u1", LeagueCode: "NSTF", LeagueID: &lg.ID, TeamID: &tm.ID,
	}))
	require.NoError(t, tx.UserState().InsertAvailability(ctx, userstate.Availability{
		UserID: "u2", LeagueCode: "NSTF", SourcePlayerID: "gone", PlayerID: &stale,
	}))
	require.Error(t, tx.UserState().InsertContext(ctx, userstate.LeagueContext{UserID: "u1", LeagueCode: "NSTF"}))

	orphans, err := tx.CountOrphans(ctx, cycle.AllLeagues())
	require.NoError(t, err)
	require.Equal(t, int64(1), orphans["player_availability.player_id"])
	require.Equal(t, int64(0), orphans["players.team_id"])

	snap, err := tx.UserState().Load(ctx, "nstf")
	require.NoError(t, err)
	require.Equal(t, int64(3), snap.Count())
	require.Equal(t, "nndz-1", snap.Associations[0].SourcePlayerID)
	require.Equal(t, "Tennaqua", snap.Contexts[0].ClubName)
	require.Equal(t, "Series 2B", snap.Contexts[0].SeriesName)
	require.Equal(t, "Tennaqua S2B", snap.Contexts[0].TeamLabel)
	require.Equal(t, "gone", snap.Availability[0].SourcePlayerID)

	deleted, err := tx.UserState().Delete(ctx, "NSTF")
	require.NoError(t, err)
	require.Equal(t, int64(3), deleted)

	counts, err := tx.CountRows(ctx, cycle.ForLeague("NSTF"))
	require.NoError(t, err)
	require.Equal(t, int64(1), counts[cycle.TablePlayers])
	require.Equal(t, int64(0), counts[cycle.TableAssociations])
}

func TestStore_TryLock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	release, ok, err := store.TryLock(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = store.TryLock(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, release(ctx))
	_, ok, err = store.TryLock(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSchemaInspector(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inspector := NewSchemaInspector()
	inspector.DropColumn("clubs", "logo_filename")
	inspector.DropTable("system_settings")

	exists, err := inspector.TableExists(ctx, "system_settings")
	require.NoError(t, err)
	require.False(t, exists)
	exists, err = inspector.TableExists(ctx, "leagues")
	require.NoError(t, err)
	require.True(t, exists)

	missing, err := inspector.MissingColumns(ctx, []cycle.Column{{Table: "clubs", Column: "logo_filename"}, {Table: "clubs", Column: "name"}})
	require.NoError(t, err)
	require.Equal(t, []cycle.Column{{Table: "clubs", Column: "logo_filename"}}, missing)

	require.NoError(t, inspector.CreateSettingsTable(ctx))
	require.NoError(t, inspector.AddClubLogoColumn(ctx))
	exists, err = inspector.ColumnExists(ctx, "clubs", "logo_filename")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, []string{"system_settings", "clubs.logo_filename"}, inspector.Created())
}
