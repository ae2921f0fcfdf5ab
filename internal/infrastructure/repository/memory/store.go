package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

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
)

// state is every table of the store. Transactions work on a copy and swap it in on commit.
type state struct {
	leagues      map[int64]league.League
	clubs        map[int64]club.Club
	series       map[int64]series.Series
	teams        map[int64]team.Team
	players      map[int64]player.Player
	matches      map[int64]match.Match
	schedules    map[int64]schedule.Entry
	stats        map[int64]standing.SeriesStat
	associations map[int64]userstate.Association
	contexts     map[int64]userstate.LeagueContext
	availability map[int64]userstate.Availability
	settings     map[string]string
	seq          map[cycle.Table]int64
}

func newState() *state {
	return &state{
		leagues:      make(map[int64]league.League),
		clubs:        make(map[int64]club.Club),
		series:       make(map[int64]series.Series),
		teams:        make(map[int64]team.Team),
		players:      make(map[int64]player.Player),
		matches:      make(map[int64]match.Match),
		schedules:    make(map[int64]schedule.Entry),
		stats:        make(map[int64]standing.SeriesStat),
		associations: make(map[int64]userstate.Association),
		contexts:     make(map[int64]userstate.LeagueContext),
		availability: make(map[int64]userstate.Availability),
		settings:     make(map[string]string),
		seq:          make(map[cycle.Table]int64),
	}
}

func (s *state) clone() *state {
	out := &state{
		leagues:      cloneMap(s.leagues),
		clubs:        cloneMap(s.clubs),
		series:       cloneMap(s.series),
		teams:        cloneMap(s.teams),
		players:      cloneMap(s.players),
		matches:      cloneMap(s.matches),
		schedules:    cloneMap(s.schedules),
		stats:        cloneMap(s.stats),
		associations: cloneMap(s.associations),
		contexts:     cloneMap(s.contexts),
		availability: cloneMap(s.availability),
		settings:     cloneMap(s.settings),
		seq:          cloneMap(s.seq),
	}
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// nextID returns the id to store for a row. An explicit id is kept and pushes the sequence
// forward the way setval would.
func (s *state) nextID(table cycle.Table, explicit int64) int64 {
	if explicit > 0 {
		if explicit > s.seq[table] {
			s.seq[table] = explicit
		}
		return explicit
	}
	s.seq[table]++
	return s.seq[table]
}

func (s *state) leagueByCode(code string) (league.League, bool) {
	for _, item := range s.leagues {
		if item.Code == code {
			return item, true
		}
	}
	return league.League{}, false
}

// leagueFilter returns a predicate over league ids for a scope.
func (s *state) leagueFilter(scope cycle.Scope) func(int64) bool {
	if scope.IsAll() {
		return func(int64) bool { return true }
	}
	lg, ok := s.leagueByCode(scope.LeagueCode)
	if !ok {
		return func(int64) bool { return false }
	}
	return func(id int64) bool { return id == lg.ID }
}

func codeInScope(scope cycle.Scope, code string) bool {
	return scope.IsAll() || identity.LeagueCode(code) == scope.LeagueCode
}

// Store is an in-process cycle.Store. It backs the offline check command and tests.
type Store struct {
	mu        sync.Mutex
	committed *state
	locked    bool
	schema    *SchemaInspector
}

func NewStore() *Store {
	return &Store{committed: newState(), schema: NewSchemaInspector()}
}

func (s *Store) TryLock(_ context.Context, _ int64) (func(context.Context) error, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked {
		return nil, false, nil
	}
	s.locked = true
	return func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.locked = false
		return nil
	}, true, nil
}

func (s *Store) Begin(_ context.Context) (cycle.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Tx{store: s, st: s.committed.clone(), savepoints: make(map[string]*state)}, nil
}

func (s *Store) Schema() cycle.SchemaInspector {
	return s.schema
}

// Inspector returns the concrete schema inspector so callers can simulate drift.
func (s *Store) Inspector() *SchemaInspector {
	return s.schema
}

// Tx is a copy-on-begin transaction over the store.
type Tx struct {
	store      *Store
	st         *state
	savepoints map[string]*state
	done       bool
	fkChecks   bool
}

func (t *Tx) Leagues() league.Repository { return leagueRepository{tx: t} }
func (t *Tx) Clubs() club.Repository { return clubRepository{tx: t} }
func (t *Tx) Series() series.Repository { return seriesRepository{tx: t} }
func (t *Tx) Teams() team.Repository { return teamRepository{tx: t} }
func (t *Tx) Players() player.Repository { return playerRepository{tx: t} }
func (t *Tx) Matches() match.Repository { return matchRepository{tx: t} }
func (t *Tx) Schedules() schedule.Repository { return scheduleRepository{tx: t} }
func (t *Tx) Standings() standing.Repository { return standingRepository{tx: t} }
func (t *Tx) UserState() userstate.Repository { return userStateRepository{tx: t} }
func (t *Tx) Settings() cycle.SettingsRepository { return settingsRepository{tx: t} }

func (t *Tx) check() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	return nil
}

func (t *Tx) DimensionKeys(_ context.Context, scope cycle.Scope) (identity.Prior, error) {
	if err := t.check(); err != nil {
		return identity.Prior{}, err
	}

	st := t.st
	out := identity.NewPrior()
	codes := make(map[int64]string, len(st.leagues))
	for _, item := range st.leagues {
		codes[item.ID] = item.Code
		if codeInScope(scope, item.Code) {
			out.Leagues[item.Code] = item.ID
		}
	}
	clubNames := make(map[int64]string, len(st.clubs))
	for _, item := range st.clubs {
		clubNames[item.ID] = item.Name
		if code := codes[item.LeagueID]; codeInScope(scope, code) {
			out.Clubs[identity.ClubKey{League: code, Club: item.Name}] = item.ID
		}
	}
	seriesNames := make(map[int64]string, len(st.series))
	for _, item := range st.series {
		seriesNames[item.ID] = item.Name
		if code := codes[item.LeagueID]; codeInScope(scope, code) {
			out.Series[identity.SeriesKey{League: code, Series: item.Name}] = item.ID
		}
	}
	for _, item := range st.teams {
		code := codes[item.LeagueID]
		if !codeInScope(scope, code) {
			continue
		}
		key := identity.TeamKey{League: code, Club: clubNames[item.ClubID], Series: seriesNames[item.SeriesID], Label: item.Label}
		out.Teams[key] = item.ID
	}
	for _, item := range st.players {
		code := codes[item.LeagueID]
		if !codeInScope(scope, code) {
			continue
		}
		out.Players[identity.PlayerKey{League: code, SourceID: item.SourcePlayerID}] = item.ID
	}
	return out, nil
}

func (t *Tx) Clear(_ context.Context, scope cycle.Scope, table cycle.Table) error {
	if err := t.check(); err != nil {
		return err
	}

	st := t.st
	inScope := st.leagueFilter(scope)
	switch table {
	case cycle.TableMatchScores:
		deleteWhere(st.matches, func(v match.Match) bool { return inScope(v.LeagueID) })
	case cycle.TableSchedule:
		deleteWhere(st.schedules, func(v schedule.Entry) bool { return inScope(v.LeagueID) })
	case cycle.TableSeriesStats:
		deleteWhere(st.stats, func(v standing.SeriesStat) bool { return inScope(v.LeagueID) })
	case cycle.TablePlayers:
		deleteWhere(st.players, func(v player.Player) bool { return inScope(v.LeagueID) })
	case cycle.TableTeams:
		deleteWhere(st.teams, func(v team.Team) bool { return inScope(v.LeagueID) })
	case cycle.TableSeries:
		deleteWhere(st.series, func(v series.Series) bool { return inScope(v.LeagueID) })
	case cycle.TableClubs:
		deleteWhere(st.clubs, func(v club.Club) bool { return inScope(v.LeagueID) })
	case cycle.TableLeagues:
		deleteWhere(st.leagues, func(v league.League) bool { return codeInScope(scope, v.Code) })
	default:
		return fmt.Errorf("clear of %s is not supported", table)
	}

	// TRUNCATE ... RESTART IDENTITY on a full-scope fact clear.
	if scope.IsAll() && table.IsFact() {
		st.seq[table] = 0
	}
	return nil
}

func deleteWhere[V any](items map[int64]V, match func(V) bool) {
	for id, item := range items {
		if match(item) {
			delete(items, id)
		}
	}
}

func (t *Tx) SetForeignKeyChecks(_ context.Context, enabled bool) error {
	if err := t.check(); err != nil {
		return err
	}
	t.fkChecks = enabled
	return nil
}

func (t *Tx) Savepoint(_ context.Context, name string) error {
	if err := t.check(); err != nil {
		return err
	}
	t.savepoints[name] = t.st.clone()
	return nil
}

func (t *Tx) RollbackToSavepoint(_ context.Context, name string) error {
	if err := t.check(); err != nil {
		return err
	}
	saved, ok := t.savepoints[name]
	if !ok {
		return fmt.Errorf("savepoint %s does not exist", name)
	}
	t.st = saved.clone()
	return nil
}

func (t *Tx) CountRows(_ context.Context, scope cycle.Scope) (cycle.TableCounts, error) {
	if err := t.check(); err != nil {
		return nil, err
	}

	st := t.st
	inScope := st.leagueFilter(scope)
	out := make(cycle.TableCounts, len(cycle.CountedTables))
	out[cycle.TableLeagues] = countWhere(st.leagues, func(v league.League) bool { return codeInScope(scope, v.Code) })
	out[cycle.TableClubs] = countWhere(st.clubs, func(v club.Club) bool { return inScope(v.LeagueID) })
	out[cycle.TableSeries] = countWhere(st.series, func(v series.Series) bool { return inScope(v.LeagueID) })
	out[cycle.TableTeams] = countWhere(st.teams, func(v team.Team) bool { return inScope(v.LeagueID) })
	out[cycle.TablePlayers] = countWhere(st.players, func(v player.Player) bool { return inScope(v.LeagueID) })
	out[cycle.TableMatchScores] = countWhere(st.matches, func(v match.Match) bool { return inScope(v.LeagueID) })
	out[cycle.TableSchedule] = countWhere(st.schedules, func(v schedule.Entry) bool { return inScope(v.LeagueID) })
	out[cycle.TableSeriesStats] = countWhere(st.stats, func(v standing.SeriesStat) bool { return inScope(v.LeagueID) })
	out[cycle.TableAssociations] = countWhere(st.associations, func(v userstate.Association) bool { return codeInScope(scope, v.LeagueCode) })
	out[cycle.TableContexts] = countWhere(st.contexts, func(v userstate.LeagueContext) bool { return codeInScope(scope, v.LeagueCode) })
	out[cycle.TableAvailability] = countWhere(st.availability, func(v userstate.Availability) bool { return codeInScope(scope, v.LeagueCode) })
	return out, nil
}

func countWhere[V any](items map[int64]V, match func(V) bool) int64 {
	var n int64
	for _, item := range items {
		if match(item) {
			n++
		}
	}
	return n
}

// CountOrphans counts, per foreign key, rows in scope whose non-empty reference has no
// parent row.
func (t *Tx) CountOrphans(_ context.Context, scope cycle.Scope) (map[string]int64, error) {
	if err := t.check(); err != nil {
		return nil, err
	}

	st := t.st
	inScope := st.leagueFilter(scope)
	exists := func(parent cycle.Table, id int64) bool {
		var ok bool
		switch parent {
		case cycle.TableLeagues:
			_, ok = st.leagues[id]
		case cycle.TableClubs:
			_, ok = st.clubs[id]
		case cycle.TableSeries:
			_, ok = st.series[id]
		case cycle.TableTeams:
			_, ok = st.teams[id]
		case cycle.TablePlayers:
			_, ok = st.players[id]
		}
		return ok
	}

	// refs yields, per row in scope, the value of each referencing column.
	refs := func(table cycle.Table) []map[string]int64 {
		var out []map[string]int64
		switch table {
		case cycle.TableClubs:
			for _, v := range st.clubs {
				if inScope(v.LeagueID) {
					out = append(out, map[string]int64{"league_id": v.LeagueID})
				}
			}
		case cycle.TableSeries:
			for _, v := range st.series {
				if inScope(v.LeagueID) {
					out = append(out, map[string]int64{"league_id": v.LeagueID})
				}
			}
		case cycle.TableTeams:
			for _, v := range st.teams {
				if inScope(v.LeagueID) {
					out = append(out, map[string]int64{"league_id": v.LeagueID, "club_id": v.ClubID, "series_id": v.SeriesID})
				}
			}
		case cycle.TablePlayers:
			for _, v := range st.players {
				if inScope(v.LeagueID) {
					out = append(out, map[string]int64{"league_id": v.LeagueID, "club_id": v.ClubID, "series_id": v.SeriesID, "team_id": v.TeamID})
				}
			}
		case cycle.TableMatchScores:
			for _, v := range st.matches {
				if inScope(v.LeagueID) {
					out = append(out, map[string]int64{"league_id": v.LeagueID, "home_team_id": v.HomeTeamID, "away_team_id": v.AwayTeamID})
				}
			}
		case cycle.TableSchedule:
			for _, v := range st.schedules {
				if inScope(v.LeagueID) {
					out = append(out, map[string]int64{"league_id": v.LeagueID, "home_team_id": v.HomeTeamID, "away_team_id": v.AwayTeamID})
				}
			}
		case cycle.TableSeriesStats:
			for _, v := range st.stats {
				if inScope(v.LeagueID) {
					out = append(out, map[string]int64{"league_id": v.LeagueID, "series_id": v.SeriesID, "team_id": v.TeamID})
				}
			}
		case cycle.TableAssociations:
			for _, v := range st.associations {
				if codeInScope(scope, v.LeagueCode) {
					out = append(out, map[string]int64{"player_id": deref(v.PlayerID), "club_id": deref(v.ClubID)})
				}
			}
		case cycle.TableContexts:
			for _, v := range st.contexts {
				if codeInScope(scope, v.LeagueCode) {
					out = append(out, map[string]int64{"league_id": deref(v.LeagueID), "team_id": deref(v.TeamID)})
				}
			}
		case cycle.TableAvailability:
			for _, v := range st.availability {
				if codeInScope(scope, v.LeagueCode) {
					out = append(out, map[string]int64{"player_id": deref(v.PlayerID), "series_id": deref(v.SeriesID)})
				}
			}
		}
		return out
	}

	out := make(map[string]int64, len(cycle.ForeignKeys))
	for _, fk := range cycle.ForeignKeys {
		var n int64
		for _, row := range refs(fk.Table) {
			if id := row[fk.Column]; id != 0 && !exists(fk.Parent, id) {
				n++
			}
		}
		out[fk.String()] = n
	}
	return out, nil
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func (t *Tx) Commit() error {
	if err := t.check(); err != nil {
		return err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	t.store.committed = t.st
	t.done = true
	return nil
}

// Rollback discards the transaction. Calling it after Commit is a no-op.
func (t *Tx) Rollback() error {
	t.done = true
	return nil
}

// Dump is a sorted copy of every committed table, for comparisons in tests and checks.
type Dump struct {
	Leagues      []league.League
	Clubs        []club.Club
	Series       []series.Series
	Teams        []team.Team
	Players      []player.Player
	Matches      []match.Match
	Schedules    []schedule.Entry
	Stats        []standing.SeriesStat
	Associations []userstate.Association
	Contexts     []userstate.LeagueContext
	Availability []userstate.Availability
	Settings     map[string]string
}

func (s *Store) Dump() Dump {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.committed
	return Dump{
		Leagues:      sortedValues(st.leagues),
		Clubs:        sortedValues(st.clubs),
		Series:       sortedValues(st.series),
		Teams:        sortedValues(st.teams),
		Players:      sortedValues(st.players),
		Matches:      sortedValues(st.matches),
		Schedules:    sortedValues(st.schedules),
		Stats:        sortedValues(st.stats),
		Associations: sortedValues(st.associations),
		Contexts:     sortedValues(st.contexts),
		Availability: sortedValues(st.availability),
		Settings:     cloneMap(st.settings),
	}
}

func sortedValues[V any](items map[int64]V) []V {
	ids := make([]int64, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]V, 0, len(ids))
	for _, id := range ids {
		out = append(out, items[id])
	}
	return out
}
