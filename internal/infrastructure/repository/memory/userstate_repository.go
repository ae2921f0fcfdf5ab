package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/userstate"
)

type userStateRepository struct {
	tx *Tx
}

// Load returns durable rows in scope. Rows still linked to a dimension row take their natural
// keys from it, so renames that happened since the row was written are followed.
func (r userStateRepository) Load(_ context.Context, leagueCode string) (userstate.Snapshot, error) {
	if err := r.tx.check(); err != nil {
		return userstate.Snapshot{}, err
	}

	st := r.tx.st
	scope := cycle.ForLeague(leagueCode)
	var out userstate.Snapshot

	for _, item := range sortedValues(st.associations) {
		if !codeInScope(scope, item.LeagueCode) {
			continue
		}
		if p, ok := st.players[deref(item.PlayerID)]; ok {
			if lg, ok := st.leagues[p.LeagueID]; ok {
				item.LeagueCode = lg.Code
			}
			item.SourcePlayerID = p.SourcePlayerID
		}
		out.Associations = append(out.Associations, item)
	}

	for _, item := range sortedValues(st.contexts) {
		if !codeInScope(scope, item.LeagueCode) {
			continue
		}
		if lg, ok := st.leagues[deref(item.LeagueID)]; ok {
			item.LeagueCode = lg.Code
		}
		if tm, ok := st.teams[deref(item.TeamID)]; ok {
			item.ClubName = st.clubs[tm.ClubID].Name
			item.SeriesName = st.series[tm.SeriesID].Name
			item.TeamLabel = tm.Label
		}
		out.Contexts = append(out.Contexts, item)
	}

	for _, item := range sortedValues(st.availability) {
		if !codeInScope(scope, item.LeagueCode) {
			continue
		}
		if p, ok := st.players[deref(item.PlayerID)]; ok {
			if lg, ok := st.leagues[p.LeagueID]; ok {
				item.LeagueCode = lg.Code
			}
			item.SourcePlayerID = p.SourcePlayerID
		}
		if s, ok := st.series[deref(item.SeriesID)]; ok {
			item.SeriesName = s.Name
		}
		out.Availability = append(out.Availability, item)
	}
	return out, nil
}

func (r userStateRepository) Count(_ context.Context, leagueCode string) (int64, error) {
	if err := r.tx.check(); err != nil {
		return 0, err
	}
	st := r.tx.st
	scope := cycle.ForLeague(leagueCode)
	n := countWhere(st.associations, func(v userstate.Association) bool { return codeInScope(scope, v.LeagueCode) })
	n += countWhere(st.contexts, func(v userstate.LeagueContext) bool { return codeInScope(scope, v.LeagueCode) })
	n += countWhere(st.availability, func(v userstate.Availability) bool { return codeInScope(scope, v.LeagueCode) })
	return n, nil
}

func (r userStateRepository) Delete(ctx context.Context, leagueCode string) (int64, error) {
	n, err := r.Count(ctx, leagueCode)
	if err != nil {
		return 0, err
	}
	st := r.tx.st
	scope := cycle.ForLeague(leagueCode)
	deleteWhere(st.associations, func(v userstate.Association) bool { return codeInScope(scope, v.LeagueCode) })
	deleteWhere(st.contexts, func(v userstate.LeagueContext) bool { return codeInScope(scope, v.LeagueCode) })
	deleteWhere(st.availability, func(v userstate.Availability) bool { return codeInScope(scope, v.LeagueCode) })
	return n, nil
}

func (r userStateRepository) InsertAssociation(_ context.Context, item userstate.Association) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	st := r.tx.st
	for _, v := range st.associations {
		if v.LeagueCode == item.LeagueCode && v.SourcePlayerID == item.SourcePlayerID {
			return fmt.Errorf("player %s/%s is already associated", item.LeagueCode, item.SourcePlayerID)
		}
	}
	if _, dup := st.associations[item.ID]; dup && item.ID > 0 {
		return fmt.Errorf("duplicate association id %d", item.ID)
	}
	item.ID = st.nextID(cycle.TableAssociations, item.ID)
	st.associations[item.ID] = item
	return nil
}

func (r userStateRepository) InsertContext(_ context.Context, item userstate.LeagueContext) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	st := r.tx.st
	for _, v := range st.contexts {
		if v.UserID == item.UserID {
			return fmt.Errorf("duplicate user context %s", item.UserID)
		}
	}
	if _, dup := st.contexts[item.ID]; dup && item.ID > 0 {
		return fmt.Errorf("duplicate user context id %d", item.ID)
	}
	item.ID = st.nextID(cycle.TableContexts, item.ID)
	st.contexts[item.ID] = item
	return nil
}

func (r userStateRepository) InsertAvailability(_ context.Context, item userstate.Availability) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	st := r.tx.st
	for _, v := range st.availability {
		if v.UserID == item.UserID && v.LeagueCode == item.LeagueCode &&
			v.SourcePlayerID == item.SourcePlayerID && v.MatchDate.Equal(item.MatchDate) {
			return fmt.Errorf("duplicate availability %s/%s/%s", item.UserID, item.LeagueCode, item.SourcePlayerID)
		}
	}
	if _, dup := st.availability[item.ID]; dup && item.ID > 0 {
		return fmt.Errorf("duplicate availability id %d", item.ID)
	}
	item.ID = st.nextID(cycle.TableAvailability, item.ID)
	st.availability[item.ID] = item
	return nil
}
