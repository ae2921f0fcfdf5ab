package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/identity"
	"github.com/riskibarqy/paddle-league/internal/domain/userstate"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
)

// fakeUserStateRepo keeps rows in slices. dropOnInsert silently loses inserted associations.
type fakeUserStateRepo struct {
	snap         userstate.Snapshot
	deleteCount  int64
	dropOnInsert bool
	inserted     userstate.Snapshot
}

func (r *fakeUserStateRepo) Load(context.Context, string) (userstate.Snapshot, error) {
	return r.snap, nil
}

func (r *fakeUserStateRepo) Count(context.Context, string) (int64, error) {
	return r.inserted.Count(), nil
}

func (r *fakeUserStateRepo) Delete(context.Context, string) (int64, error) {
	return r.deleteCount, nil
}

func (r *fakeUserStateRepo) InsertAssociation(_ context.Context, item userstate.Association) error {
	if !r.dropOnInsert {
		r.inserted.Associations = append(r.inserted.Associations, item)
	}
	return nil
}

func (r *fakeUserStateRepo) InsertContext(_ context.Context, item userstate.LeagueContext) error {
	r.inserted.Contexts = append(r.inserted.Contexts, item)
	return nil
}

func (r *fakeUserStateRepo) InsertAvailability(_ context.Context, item userstate.Availability) error {
	r.inserted.Availability = append(r.inserted.Availability, item)
	return nil
}

type fakeLookup struct {
	players map[identity.PlayerKey]PlayerRef
	keys    identity.Keys
}

func (l fakeLookup) LookupPlayer(_ context.Context, key identity.PlayerKey) (PlayerRef, bool, error) {
	ref, ok := l.players[key]
	return ref, ok, nil
}

func (l fakeLookup) Lookup(context.Context, ResolveRequest) (identity.Keys, error) {
	return l.keys, nil
}

func sampleSnapshot() userstate.Snapshot {
	stale := int64(99)
	return userstate.Snapshot{
		Associations: []userstate.Association{
			{ID: 1, UserID: "u1", LeagueCode: "NSTF", SourcePlayerID: "nndz-1", PlayerID: &stale},
			{ID: 2, UserID: "u2", LeagueCode: "NSTF", SourcePlayerID: "nndz-9", PlayerID: &stale},
		},
		Contexts: []userstate.LeagueContext{
			{ID: 1, UserID: "u1", LeagueCode: "NSTF", ClubName: "Tennaqua", SeriesName: "Series 2B", TeamLabel: "Tennaqua S2B"},
		},
		Availability: []userstate.Availability{
			{ID: 1, UserID: "u1", LeagueCode: "NSTF", SourcePlayerID: "nndz-1", SeriesName: "Series 2B",
				MatchDate: time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC), Status: "available"},
		},
	}
}

func TestUserStateKeeper_SnapshotDetectsConcurrentWriter(t *testing.T) {
	t.Parallel()

	repo := &fakeUserStateRepo{snap: sampleSnapshot(), deleteCount: 3}
	_, err := NewUserStateKeeper(logging.NewNop()).Snapshot(context.Background(), repo, cycle.AllLeagues())
	require.True(t, errors.Is(err, ErrDurableStateLost))
}

func TestUserStateKeeper_RestoreRelinksByNaturalKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	keeper := NewUserStateKeeper(logging.NewNop())
	repo := &fakeUserStateRepo{snap: sampleSnapshot(), deleteCount: 4}

	snap, err := keeper.Snapshot(ctx, repo, cycle.ForLeague("NSTF"))
	require.NoError(t, err)

	lookup := fakeLookup{
		players: map[identity.PlayerKey]PlayerRef{
			{League: "NSTF", SourceID: "nndz-1"}: {ID: 5, ClubID: 2},
		},
		keys: identity.Keys{LeagueID: 1, ClubID: 2, SeriesID: 3, TeamID: 4},
	}
	result, err := keeper.Restore(ctx, repo, lookup, cycle.ForLeague("NSTF"), snap)
	require.NoError(t, err)
	require.Equal(t, int64(4), result.Before)
	require.Equal(t, int64(4), result.After)
	require.Equal(t, 3, result.Resolved)
	require.InDelta(t, 0.75, result.ResolutionRate(), 1e-9)

	linked := repo.inserted.Associations[0]
	require.Equal(t, int64(5), *linked.PlayerID)
	require.Equal(t, int64(2), *linked.ClubID)
	require.False(t, linked.NeedsReview)

	orphaned := repo.inserted.Associations[1]
	require.Nil(t, orphaned.PlayerID)
	require.Nil(t, orphaned.ClubID)
	require.True(t, orphaned.NeedsReview)
	require.Equal(t, []userstate.Unresolved{{
		Table: userstate.TableAssociations, RowID: 2, UserID: "u2", Key: "NSTF/nndz-9",
	}}, result.Unresolved)

	require.Equal(t, int64(4), *repo.inserted.Contexts[0].TeamID)
	require.Equal(t, int64(5), *repo.inserted.Availability[0].PlayerID)
	require.Equal(t, int64(3), *repo.inserted.Availability[0].SeriesID)
}

func TestUserStateKeeper_RestoreFailsWhenRowsGoMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := &fakeUserStateRepo{dropOnInsert: true}
	_, err := NewUserStateKeeper(logging.NewNop()).Restore(ctx, repo, fakeLookup{}, cycle.AllLeagues(), sampleSnapshot())
	require.True(t, errors.Is(err, ErrDurableStateLost))
	require.True(t, IsFatal(err))
}

func TestRestoreResult_EmptySnapshotIsFullyResolved(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1.0, RestoreResult{}.ResolutionRate())
}
