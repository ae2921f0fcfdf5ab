package usecase

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/identity"
	"github.com/riskibarqy/paddle-league/internal/domain/userstate"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
)

// RestoreResult summarizes how durable rows were relinked after a reload.
type RestoreResult struct {
	Before     int64
	After      int64
	Resolved   int
	Unresolved []userstate.Unresolved
}

// ResolutionRate is the share of restored rows whose natural keys resolved. An empty
// snapshot counts as fully resolved.
func (r RestoreResult) ResolutionRate() float64 {
	total := r.Resolved + len(r.Unresolved)
	if total == 0 {
		return 1
	}
	return float64(r.Resolved) / float64(total)
}

// KeyLookup resolves natural keys against the current dimensions without creating rows.
type KeyLookup interface {
	LookupPlayer(ctx context.Context, key identity.PlayerKey) (PlayerRef, bool, error)
	Lookup(ctx context.Context, req ResolveRequest) (identity.Keys, error)
}

// PlayerRef is what restore needs to know about a resolved player.
type PlayerRef struct {
	ID     int64
	ClubID int64
}

// resolverLookup adapts the entity resolver to KeyLookup.
type resolverLookup struct {
	resolver *EntityResolver
}

func (l resolverLookup) LookupPlayer(ctx context.Context, key identity.PlayerKey) (PlayerRef, bool, error) {
	item, found, err := l.resolver.LookupPlayer(ctx, key)
	if err != nil || !found {
		return PlayerRef{}, found, err
	}
	return PlayerRef{ID: item.ID, ClubID: item.ClubID}, true, nil
}

func (l resolverLookup) Lookup(ctx context.Context, req ResolveRequest) (identity.Keys, error) {
	return l.resolver.Lookup(ctx, req)
}

// LookupFor exposes an entity resolver as a read-only KeyLookup.
func LookupFor(resolver *EntityResolver) KeyLookup {
	return resolverLookup{resolver: resolver}
}

// UserStateKeeper carries durable user rows across a destructive reload.
type UserStateKeeper struct {
	logger *logging.Logger
}

func NewUserStateKeeper(logger *logging.Logger) *UserStateKeeper {
	if logger == nil {
		logger = logging.Default()
	}
	return &UserStateKeeper{logger: logger}
}

// Snapshot reads every durable row in scope with its natural keys, then removes the rows so
// the dimensions they reference can be cleared.
func (k *UserStateKeeper) Snapshot(ctx context.Context, repo userstate.Repository, scope cycle.Scope) (userstate.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserStateKeeper.Snapshot")
	defer span.End()

	snap, err := repo.Load(ctx, scope.LeagueCode)
	if err != nil {
		return userstate.Snapshot{}, fmt.Errorf("load durable user state: %w", err)
	}

	deleted, err := repo.Delete(ctx, scope.LeagueCode)
	if err != nil {
		return userstate.Snapshot{}, fmt.Errorf("delete durable user state: %w", err)
	}
	if deleted != snap.Count() {
		err := errors.Wrapf(ErrDurableStateLost, "snapshot holds %d rows but %d were cleared", snap.Count(), deleted)
		return userstate.Snapshot{}, errors.WithHint(err, "another writer touched durable tables during the run")
	}

	k.logger.InfoContext(ctx, "durable user state captured",
		"scope", scope.String(),
		"associations", len(snap.Associations),
		"contexts", len(snap.Contexts),
		"availability", len(snap.Availability),
	)
	return snap, nil
}

// Restore reinserts every snapshot row with foreign keys re-resolved from natural keys. A row
// whose key no longer resolves is kept with empty foreign keys and marked for review.
func (k *UserStateKeeper) Restore(ctx context.Context, repo userstate.Repository, lookup KeyLookup, scope cycle.Scope, snap userstate.Snapshot) (RestoreResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserStateKeeper.Restore")
	defer span.End()

	result := RestoreResult{Before: snap.Count()}

	for _, item := range snap.Associations {
		ref, found, err := lookup.LookupPlayer(ctx, item.PlayerKey())
		if err != nil {
			return result, fmt.Errorf("resolve association %d: %w", item.ID, err)
		}
		item.PlayerID, item.ClubID, item.NeedsReview = nil, nil, !found
		if found {
			item.PlayerID = int64Ptr(ref.ID)
			item.ClubID = optionalID(ref.ClubID)
			result.Resolved++
		} else {
			result.Unresolved = append(result.Unresolved, userstate.Unresolved{
				Table:  userstate.TableAssociations,
				RowID:  item.ID,
				UserID: item.UserID,
				Key:    item.LeagueCode + "/" + item.SourcePlayerID,
			})
		}
		if err := repo.InsertAssociation(ctx, item); err != nil {
			return result, fmt.Errorf("restore association %d: %w", item.ID, err)
		}
	}

	for _, item := range snap.Contexts {
		keys, err := lookup.Lookup(ctx, ResolveRequest{
			LeagueCode: item.LeagueCode,
			ClubName:   item.ClubName,
			SeriesName: item.SeriesName,
			TeamLabel:  item.TeamLabel,
		})
		if err != nil {
			return result, fmt.Errorf("resolve user context %d: %w", item.ID, err)
		}
		resolved := keys.LeagueID != 0 && (item.TeamLabel == "" || keys.TeamID != 0)
		item.LeagueID, item.TeamID, item.NeedsReview = optionalID(keys.LeagueID), optionalID(keys.TeamID), !resolved
		if resolved {
			result.Resolved++
		} else {
			result.Unresolved = append(result.Unresolved, userstate.Unresolved{
				Table:  userstate.TableContexts,
				RowID:  item.ID,
				UserID: item.UserID,
				Key:    contextKey(item),
			})
		}
		if err := repo.InsertContext(ctx, item); err != nil {
			return result, fmt.Errorf("restore user context %d: %w", item.ID, err)
		}
	}

	for _, item := range snap.Availability {
		ref, found, err := lookup.LookupPlayer(ctx, item.PlayerKey())
		if err != nil {
			return result, fmt.Errorf("resolve availability %d: %w", item.ID, err)
		}
		var seriesID int64
		if found && item.SeriesName != "" {
			keys, err := lookup.Lookup(ctx, ResolveRequest{LeagueCode: item.LeagueCode, SeriesName: item.SeriesName})
			if err != nil {
				return result, fmt.Errorf("resolve availability %d series: %w", item.ID, err)
			}
			seriesID = keys.SeriesID
		}
		item.PlayerID, item.SeriesID, item.NeedsReview = nil, optionalID(seriesID), !found
		if found {
			item.PlayerID = int64Ptr(ref.ID)
			result.Resolved++
		} else {
			result.Unresolved = append(result.Unresolved, userstate.Unresolved{
				Table:  userstate.TableAvailability,
				RowID:  item.ID,
				UserID: item.UserID,
				Key:    item.LeagueCode + "/" + item.SourcePlayerID + "@" + item.MatchDate.Format("2006-01-02"),
			})
		}
		if err := repo.InsertAvailability(ctx, item); err != nil {
			return result, fmt.Errorf("restore availability %d: %w", item.ID, err)
		}
	}

	after, err := repo.Count(ctx, scope.LeagueCode)
	if err != nil {
		return result, fmt.Errorf("count durable user state: %w", err)
	}
	result.After = after
	if after < result.Before {
		err := errors.Wrapf(ErrDurableStateLost, "%d durable rows before reload, %d after", result.Before, after)
		return result, errors.WithDetail(err, "scope "+scope.String())
	}

	for _, item := range result.Unresolved {
		k.logger.WarnContext(ctx, "durable row needs review",
			"table", item.Table,
			"row_id", item.RowID,
			"user_id", item.UserID,
			"natural_key", item.Key,
		)
	}
	k.logger.InfoContext(ctx, "durable user state restored",
		"scope", scope.String(),
		"rows", after,
		"resolved", result.Resolved,
		"unresolved", len(result.Unresolved),
	)
	return result, nil
}

func contextKey(item userstate.LeagueContext) string {
	if item.TeamLabel == "" {
		return item.LeagueCode
	}
	return item.LeagueCode + "/" + item.ClubName + "/" + item.SeriesName + "/" + item.TeamLabel
}

func int64Ptr(v int64) *int64 {
	return &v
}

func optionalID(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
