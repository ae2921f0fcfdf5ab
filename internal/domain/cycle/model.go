package cycle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/paddle-league/internal/domain/identity"
)

// Scope selects the leagues a cycle touches. An empty LeagueCode means every league.
type Scope struct {
	LeagueCode string
}

func AllLeagues() Scope {
	return Scope{}
}

func ForLeague(code string) Scope {
	return Scope{LeagueCode: identity.LeagueCode(code)}
}

// ParseScope accepts a league code or "all".
func ParseScope(raw string) Scope {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, "all") {
		return AllLeagues()
	}
	return ForLeague(value)
}

func (s Scope) IsAll() bool {
	return s.LeagueCode == ""
}

// Includes reports whether a league code falls inside the scope.
func (s Scope) Includes(leagueCode string) bool {
	return s.IsAll() || identity.LeagueCode(leagueCode) == s.LeagueCode
}

func (s Scope) String() string {
	if s.IsAll() {
		return "all"
	}
	return s.LeagueCode
}

type Kind string

const (
	KindPlayers   Kind = "players"
	KindMatches   Kind = "matches"
	KindSchedules Kind = "schedules"
	KindStats     Kind = "stats"
)

var allKinds = []Kind{KindPlayers, KindMatches, KindSchedules, KindStats}

// KindSet is the set of source kinds a cycle reloads.
type KindSet map[Kind]struct{}

func FullKinds() KindSet {
	out := make(KindSet, len(allKinds))
	for _, k := range allKinds {
		out[k] = struct{}{}
	}
	return out
}

// ParseKinds reads a comma separated kind list. Empty input selects every kind.
func ParseKinds(raw string) (KindSet, error) {
	if strings.TrimSpace(raw) == "" {
		return FullKinds(), nil
	}

	out := make(KindSet)
	for _, part := range strings.Split(raw, ",") {
		item := Kind(strings.ToLower(strings.TrimSpace(part)))
		if item == "" {
			continue
		}
		switch item {
		case KindPlayers, KindMatches, KindSchedules, KindStats:
			out[item] = struct{}{}
		default:
			return nil, fmt.Errorf("unknown kind %q", part)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one kind is required")
	}
	return out, nil
}

func (k KindSet) Has(kind Kind) bool {
	_, ok := k[kind]
	return ok
}

func (k KindSet) IsFull() bool {
	for _, kind := range allKinds {
		if !k.Has(kind) {
			return false
		}
	}
	return true
}

func (k KindSet) String() string {
	out := make([]string, 0, len(k))
	for kind := range k {
		out = append(out, string(kind))
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

type Table string

const (
	TableLeagues      Table = "leagues"
	TableClubs        Table = "clubs"
	TableSeries       Table = "series"
	TableTeams        Table = "teams"
	TablePlayers      Table = "players"
	TableMatchScores  Table = "match_scores"
	TableSchedule     Table = "schedule"
	TableSeriesStats  Table = "series_stats"
	TableAssociations Table = "user_player_associations"
	TableContexts     Table = "user_contexts"
	TableAvailability Table = "player_availability"
	TableSettings     Table = "system_settings"
)

// FactTables lists fact tables in clearing order.
var FactTables = []Table{TableMatchScores, TableSchedule, TableSeriesStats}

// DimensionTables lists dimension tables in clearing order (children first).
var DimensionTables = []Table{TablePlayers, TableTeams, TableSeries, TableClubs, TableLeagues}

var DurableTables = []Table{TableAssociations, TableContexts, TableAvailability}

// CountedTables are the tables compared between cycles.
var CountedTables = append(append(append([]Table{}, DimensionTables...), FactTables...), DurableTables...)

func (t Table) IsFact() bool {
	for _, f := range FactTables {
		if f == t {
			return true
		}
	}
	return false
}

func (t Table) IsDurable() bool {
	for _, d := range DurableTables {
		if d == t {
			return true
		}
	}
	return false
}

// FactTableFor maps a reload kind to the fact table it replaces.
func FactTableFor(kind Kind) (Table, bool) {
	switch kind {
	case KindMatches:
		return TableMatchScores, true
	case KindSchedules:
		return TableSchedule, true
	case KindStats:
		return TableSeriesStats, true
	default:
		return "", false
	}
}

// TableCounts holds row counts per table.
type TableCounts map[Table]int64

func (c TableCounts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// ForeignKey names a child column that must reference an existing parent row.
type ForeignKey struct {
	Table  Table
	Column string
	Parent Table
}

func (f ForeignKey) String() string {
	return string(f.Table) + "." + f.Column
}

var ForeignKeys = []ForeignKey{
	{Table: TableClubs, Column: "league_id", Parent: TableLeagues},
	{Table: TableSeries, Column: "league_id", Parent: TableLeagues},
	{Table: TableTeams, Column: "league_id", Parent: TableLeagues},
	{Table: TableTeams, Column: "club_id", Parent: TableClubs},
	{Table: TableTeams, Column: "series_id", Parent: TableSeries},
	{Table: TablePlayers, Column: "league_id", Parent: TableLeagues},
	{Table: TablePlayers, Column: "club_id", Parent: TableClubs},
	{Table: TablePlayers, Column: "series_id", Parent: TableSeries},
	{Table: TablePlayers, Column: "team_id", Parent: TableTeams},
	{Table: TableMatchScores, Column: "league_id", Parent: TableLeagues},
	{Table: TableMatchScores, Column: "home_team_id", Parent: TableTeams},
	{Table: TableMatchScores, Column: "away_team_id", Parent: TableTeams},
	{Table: TableSchedule, Column: "league_id", Parent: TableLeagues},
	{Table: TableSchedule, Column: "home_team_id", Parent: TableTeams},
	{Table: TableSchedule, Column: "away_team_id", Parent: TableTeams},
	{Table: TableSeriesStats, Column: "league_id", Parent: TableLeagues},
	{Table: TableSeriesStats, Column: "series_id", Parent: TableSeries},
	{Table: TableSeriesStats, Column: "team_id", Parent: TableTeams},
	{Table: TableAssociations, Column: "player_id", Parent: TablePlayers},
	{Table: TableAssociations, Column: "club_id", Parent: TableClubs},
	{Table: TableContexts, Column: "league_id", Parent: TableLeagues},
	{Table: TableContexts, Column: "team_id", Parent: TableTeams},
	{Table: TableAvailability, Column: "player_id", Parent: TablePlayers},
	{Table: TableAvailability, Column: "series_id", Parent: TableSeries},
}

// Column is a (table, column) pair checked before a cycle starts.
type Column struct {
	Table  string
	Column string
}

func (c Column) String() string {
	return c.Table + "." + c.Column
}

const (
	SettingLastCountsPrefix = "last_counts."
	SettingCourtSlotsPrefix = "court_slots."
)

// RecordError is a record-level failure. The record is skipped and the cycle continues.
type RecordError struct {
	League string
	Kind   Kind
	Index  int
	Reason string
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s %s record %d: %s", e.League, e.Kind, e.Index, e.Reason)
}
