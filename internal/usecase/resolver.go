package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/paddle-league/internal/domain/club"
	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/identity"
	"github.com/riskibarqy/paddle-league/internal/domain/league"
	"github.com/riskibarqy/paddle-league/internal/domain/player"
	"github.com/riskibarqy/paddle-league/internal/domain/series"
	"github.com/riskibarqy/paddle-league/internal/domain/team"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
)

// ResolveRequest names the natural keys of one source record. Empty levels are skipped.
type ResolveRequest struct {
	LeagueCode string
	LeagueName string
	ClubName   string
	SeriesName string
	TeamLabel  string
	Player     *PlayerAttributes
}

// PlayerAttributes are the non-identity player columns taken from players.json.
type PlayerAttributes struct {
	SourceID       string
	FirstName      string
	LastName       string
	StartingRating *float64
	Wins           int
	Losses         int
}

// LevelCounts counts resolver activity per dimension.
type LevelCounts struct {
	Leagues int
	Clubs   int
	Series  int
	Teams   int
	Players int
}

func (c LevelCounts) Total() int {
	return c.Leagues + c.Clubs + c.Series + c.Teams + c.Players
}

type ResolverStats struct {
	Created   LevelCounts
	Preserved LevelCounts
	Refreshed LevelCounts
}

// Repositories is the dimension storage the resolver works against.
type Repositories struct {
	Leagues league.Repository
	Clubs   club.Repository
	Series  series.Repository
	Teams   team.Repository
	Players player.Repository
}

// RepositoriesOf returns the dimension repositories of a cycle transaction.
func RepositoriesOf(tx cycle.Tx) Repositories {
	return Repositories{
		Leagues: tx.Leagues(),
		Clubs:   tx.Clubs(),
		Series:  tx.Series(),
		Teams:   tx.Teams(),
		Players: tx.Players(),
	}
}

// EntityResolver is the single authority mapping natural keys to surrogate keys during a run.
// It is not safe for concurrent use.
type EntityResolver struct {
	repos  Repositories
	naming NamingBook
	prior  identity.Prior
	logger *logging.Logger

	leagues   map[string]league.League
	clubs     map[identity.ClubKey]int64
	series    map[identity.SeriesKey]series.Series
	teams     map[identity.TeamKey]team.Team
	teamsByID map[int64]team.Team
	players   map[identity.PlayerKey]player.Player
	stats     ResolverStats
}

func NewEntityResolver(repos Repositories, naming NamingBook, prior identity.Prior, logger *logging.Logger) *EntityResolver {
	if logger == nil {
		logger = logging.Default()
	}
	if prior.Leagues == nil {
		prior = identity.NewPrior()
	}
	return &EntityResolver{
		repos:     repos,
		naming:    naming,
		prior:     prior,
		logger:    logger,
		leagues:   make(map[string]league.League),
		clubs:     make(map[identity.ClubKey]int64),
		series:    make(map[identity.SeriesKey]series.Series),
		teams:     make(map[identity.TeamKey]team.Team),
		teamsByID: make(map[int64]team.Team),
		players:   make(map[identity.PlayerKey]player.Player),
	}
}

func (r *EntityResolver) Stats() ResolverStats {
	return r.stats
}

func (r *EntityResolver) Naming() NamingBook {
	return r.naming
}

// Resolve walks League, Club, Series, Team and Player in that order, creating rows that do
// not exist yet. A record without a league code is skipped.
func (r *EntityResolver) Resolve(ctx context.Context, req ResolveRequest) (identity.Keys, error) {
	var keys identity.Keys

	code := identity.LeagueCode(req.LeagueCode)
	if code == "" {
		return keys, skipRecord("missing league code")
	}
	rules := r.naming.For(code)

	lg, err := r.resolveLeague(ctx, code, identity.Name(req.LeagueName))
	if err != nil {
		return keys, err
	}
	keys.LeagueID = lg.ID

	clubName := identity.Name(req.ClubName)
	if clubName != "" {
		keys.ClubID, err = r.resolveClub(ctx, lg, clubName)
		if err != nil {
			return keys, err
		}
	}

	seriesName := ""
	if raw := identity.Name(req.SeriesName); raw != "" {
		seriesName = rules.SeriesName(raw)
		if seriesName == "" {
			return keys, skipRecord("unparseable series %q", req.SeriesName)
		}
		item, err := r.resolveSeries(ctx, lg, seriesName, rules.SeriesDisplayName(seriesName))
		if err != nil {
			return keys, err
		}
		keys.SeriesID = item.ID
	}

	if raw := identity.Name(req.TeamLabel); raw != "" {
		if keys.ClubID == 0 || keys.SeriesID == 0 {
			return keys, skipRecord("team %q needs a club and a series", raw)
		}
		label := rules.TeamLabel(raw)
		key := identity.TeamKey{League: code, Club: clubName, Series: seriesName, Label: label}
		item, err := r.resolveTeam(ctx, lg, keys.ClubID, keys.SeriesID, key, rules.TeamDisplayName(label))
		if err != nil {
			return keys, err
		}
		keys.TeamID = item.ID
	}

	if req.Player != nil {
		id, err := r.resolvePlayer(ctx, lg, keys, *req.Player)
		if err != nil {
			return keys, err
		}
		keys.PlayerID = id
	}

	return keys, nil
}

// ResolveTeamLabel resolves the club, series and team of a scraped team label.
func (r *EntityResolver) ResolveTeamLabel(ctx context.Context, leagueCode, rawLabel string) (identity.Keys, identity.TeamKey, error) {
	key, ok := r.naming.TeamKey(leagueCode, rawLabel)
	if !ok {
		return identity.Keys{}, identity.TeamKey{}, skipRecord("unparseable team label %q", rawLabel)
	}
	keys, err := r.Resolve(ctx, ResolveRequest{
		LeagueCode: key.League,
		ClubName:   key.Club,
		SeriesName: key.Series,
		TeamLabel:  key.Label,
	})
	return keys, key, err
}

func (r *EntityResolver) resolveLeague(ctx context.Context, code, name string) (league.League, error) {
	if cached, ok := r.leagues[code]; ok {
		if name != "" && cached.Name != name {
			if err := r.repos.Leagues.UpdateName(ctx, cached.ID, name); err != nil {
				return league.League{}, fmt.Errorf("update league %s name: %w", code, err)
			}
			cached.Name = name
			r.leagues[code] = cached
			r.stats.Refreshed.Leagues++
		}
		return cached, nil
	}

	existing, found, err := r.repos.Leagues.GetByCode(ctx, code)
	if err != nil {
		return league.League{}, fmt.Errorf("get league %s: %w", code, err)
	}
	if found {
		if name != "" && existing.Name != name {
			if err := r.repos.Leagues.UpdateName(ctx, existing.ID, name); err != nil {
				return league.League{}, fmt.Errorf("update league %s name: %w", code, err)
			}
			existing.Name = name
			r.stats.Refreshed.Leagues++
		}
		r.leagues[code] = existing
		return existing, nil
	}

	if name == "" {
		name = code
	}
	item := league.League{ID: r.prior.Leagues[code], Code: code, Name: name}
	created, err := r.repos.Leagues.Insert(ctx, item)
	if err != nil {
		return league.League{}, fmt.Errorf("insert league %s: %w", code, err)
	}
	r.countCreated(item.ID != 0, &r.stats.Created.Leagues, &r.stats.Preserved.Leagues)
	r.leagues[code] = created
	return created, nil
}

func (r *EntityResolver) resolveClub(ctx context.Context, lg league.League, name string) (int64, error) {
	key := identity.ClubKey{League: lg.Code, Club: name}
	if id, ok := r.clubs[key]; ok {
		return id, nil
	}

	existing, found, err := r.repos.Clubs.GetByName(ctx, lg.ID, name)
	if err != nil {
		return 0, fmt.Errorf("get club %s/%s: %w", lg.Code, name, err)
	}
	if found {
		r.clubs[key] = existing.ID
		return existing.ID, nil
	}

	item := club.Club{ID: r.prior.Clubs[key], LeagueID: lg.ID, Name: name}
	created, err := r.repos.Clubs.Insert(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("insert club %s/%s: %w", lg.Code, name, err)
	}
	r.countCreated(item.ID != 0, &r.stats.Created.Clubs, &r.stats.Preserved.Clubs)
	r.clubs[key] = created.ID
	return created.ID, nil
}

func (r *EntityResolver) resolveSeries(ctx context.Context, lg league.League, name, display string) (series.Series, error) {
	key := identity.SeriesKey{League: lg.Code, Series: name}
	if cached, ok := r.series[key]; ok {
		return cached, nil
	}

	existing, found, err := r.repos.Series.GetByName(ctx, lg.ID, name)
	if err != nil {
		return series.Series{}, fmt.Errorf("get series %s/%s: %w", lg.Code, name, err)
	}
	if found {
		if existing.DisplayName != display {
			if err := r.repos.Series.UpdateDisplayName(ctx, existing.ID, display); err != nil {
				return series.Series{}, fmt.Errorf("update series %s/%s display name: %w", lg.Code, name, err)
			}
			existing.DisplayName = display
			r.stats.Refreshed.Series++
		}
		r.series[key] = existing
		return existing, nil
	}

	item := series.Series{ID: r.prior.Series[key], LeagueID: lg.ID, Name: name, DisplayName: display}
	created, err := r.repos.Series.Insert(ctx, item)
	if err != nil {
		return series.Series{}, fmt.Errorf("insert series %s/%s: %w", lg.Code, name, err)
	}
	r.countCreated(item.ID != 0, &r.stats.Created.Series, &r.stats.Preserved.Series)
	r.series[key] = created
	return created, nil
}

func (r *EntityResolver) resolveTeam(ctx context.Context, lg league.League, clubID, seriesID int64, key identity.TeamKey, display string) (team.Team, error) {
	if cached, ok := r.teams[key]; ok {
		return cached, nil
	}

	existing, found, err := r.repos.Teams.GetByKey(ctx, lg.ID, clubID, seriesID, key.Label)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team %s/%s: %w", lg.Code, key.Label, err)
	}
	if found {
		if existing.DisplayName != display {
			if err := r.repos.Teams.UpdateDisplayName(ctx, existing.ID, display); err != nil {
				return team.Team{}, fmt.Errorf("update team %s/%s display name: %w", lg.Code, key.Label, err)
			}
			existing.DisplayName = display
			r.stats.Refreshed.Teams++
		}
		r.teams[key] = existing
		r.teamsByID[existing.ID] = existing
		return existing, nil
	}

	item := team.Team{
		ID:          r.prior.Teams[key],
		LeagueID:    lg.ID,
		ClubID:      clubID,
		SeriesID:    seriesID,
		Label:       key.Label,
		DisplayName: display,
	}
	created, err := r.repos.Teams.Insert(ctx, item)
	if err != nil {
		return team.Team{}, fmt.Errorf("insert team %s/%s: %w", lg.Code, key.Label, err)
	}
	r.countCreated(item.ID != 0, &r.stats.Created.Teams, &r.stats.Preserved.Teams)
	r.teams[key] = created
	r.teamsByID[created.ID] = created
	return created, nil
}

// resolvePlayer applies players.json attributes on the first sighting in a run. Later
// sightings of the same natural key return the cached key unchanged.
func (r *EntityResolver) resolvePlayer(ctx context.Context, lg league.League, keys identity.Keys, attrs PlayerAttributes) (int64, error) {
	sourceID := identity.Name(attrs.SourceID)
	if sourceID == "" {
		return 0, skipRecord("missing player id")
	}
	key := identity.PlayerKey{League: lg.Code, SourceID: sourceID}
	if cached, ok := r.players[key]; ok {
		return cached.ID, nil
	}

	item := player.Player{
		LeagueID:       lg.ID,
		SourcePlayerID: sourceID,
		FirstName:      identity.Name(attrs.FirstName),
		LastName:       identity.Name(attrs.LastName),
		ClubID:         keys.ClubID,
		SeriesID:       keys.SeriesID,
		TeamID:         keys.TeamID,
		IsActive:       true,
		StartingRating: attrs.StartingRating,
		Wins:           attrs.Wins,
		Losses:         attrs.Losses,
	}
	if err := item.Validate(); err != nil {
		return 0, skipRecord("invalid player %s: %s", sourceID, err.Error())
	}

	existing, found, err := r.repos.Players.GetBySourceID(ctx, lg.ID, sourceID)
	if err != nil {
		return 0, fmt.Errorf("get player %s/%s: %w", lg.Code, sourceID, err)
	}
	if found {
		item.ID = existing.ID
		if !samePlayer(existing, item) {
			if err := r.repos.Players.UpdateAttributes(ctx, item); err != nil {
				return 0, fmt.Errorf("update player %s/%s: %w", lg.Code, sourceID, err)
			}
			r.stats.Refreshed.Players++
		}
		r.players[key] = item
		return item.ID, nil
	}

	item.ID = r.prior.Players[key]
	created, err := r.repos.Players.Insert(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("insert player %s/%s: %w", lg.Code, sourceID, err)
	}
	r.countCreated(item.ID != 0, &r.stats.Created.Players, &r.stats.Preserved.Players)
	r.players[key] = created
	return created.ID, nil
}

func (r *EntityResolver) countCreated(preserved bool, created, kept *int) {
	if preserved {
		*kept++
		return
	}
	*created++
}

// LookupPlayer is the read-only player lookup used by restore.
func (r *EntityResolver) LookupPlayer(ctx context.Context, key identity.PlayerKey) (player.Player, bool, error) {
	key.League = identity.LeagueCode(key.League)
	key.SourceID = identity.Name(key.SourceID)
	if cached, ok := r.players[key]; ok {
		return cached, true, nil
	}

	lg, found, err := r.lookupLeague(ctx, key.League)
	if err != nil || !found {
		return player.Player{}, false, err
	}

	existing, found, err := r.repos.Players.GetBySourceID(ctx, lg.ID, key.SourceID)
	if err != nil {
		return player.Player{}, false, fmt.Errorf("get player %s/%s: %w", key.League, key.SourceID, err)
	}
	if found {
		r.players[key] = existing
	}
	return existing, found, nil
}

// Lookup is the read-only variant of Resolve. Levels that do not resolve stay zero and no
// rows are created.
func (r *EntityResolver) Lookup(ctx context.Context, req ResolveRequest) (identity.Keys, error) {
	var keys identity.Keys

	code := identity.LeagueCode(req.LeagueCode)
	lg, found, err := r.lookupLeague(ctx, code)
	if err != nil || !found {
		return keys, err
	}
	keys.LeagueID = lg.ID
	rules := r.naming.For(code)

	clubName := identity.Name(req.ClubName)
	if clubName != "" {
		ckey := identity.ClubKey{League: code, Club: clubName}
		if id, ok := r.clubs[ckey]; ok {
			keys.ClubID = id
		} else {
			existing, found, err := r.repos.Clubs.GetByName(ctx, lg.ID, clubName)
			if err != nil {
				return keys, fmt.Errorf("get club %s/%s: %w", code, clubName, err)
			}
			if found {
				keys.ClubID = existing.ID
				r.clubs[ckey] = existing.ID
			}
		}
	}

	seriesName := ""
	if raw := identity.Name(req.SeriesName); raw != "" {
		seriesName = rules.SeriesName(raw)
		skey := identity.SeriesKey{League: code, Series: seriesName}
		if cached, ok := r.series[skey]; ok {
			keys.SeriesID = cached.ID
		} else if seriesName != "" {
			existing, found, err := r.repos.Series.GetByName(ctx, lg.ID, seriesName)
			if err != nil {
				return keys, fmt.Errorf("get series %s/%s: %w", code, seriesName, err)
			}
			if found {
				keys.SeriesID = existing.ID
				r.series[skey] = existing
			}
		}
	}

	if raw := identity.Name(req.TeamLabel); raw != "" && keys.ClubID != 0 && keys.SeriesID != 0 {
		tkey := identity.TeamKey{League: code, Club: clubName, Series: seriesName, Label: rules.TeamLabel(raw)}
		if cached, ok := r.teams[tkey]; ok {
			keys.TeamID = cached.ID
		} else {
			existing, found, err := r.repos.Teams.GetByKey(ctx, lg.ID, keys.ClubID, keys.SeriesID, tkey.Label)
			if err != nil {
				return keys, fmt.Errorf("get team %s/%s: %w", code, tkey.Label, err)
			}
			if found {
				keys.TeamID = existing.ID
				r.teams[tkey] = existing
				r.teamsByID[existing.ID] = existing
			}
		}
	}

	return keys, nil
}

// LookupTeam returns the surrogate key of a team natural key without creating rows.
func (r *EntityResolver) LookupTeam(ctx context.Context, key identity.TeamKey) (int64, bool, error) {
	if cached, ok := r.teams[key]; ok {
		return cached.ID, true, nil
	}
	keys, err := r.Lookup(ctx, ResolveRequest{
		LeagueCode: key.League,
		ClubName:   key.Club,
		SeriesName: key.Series,
		TeamLabel:  key.Label,
	})
	if err != nil {
		return 0, false, err
	}
	return keys.TeamID, keys.TeamID != 0, nil
}

// TeamByID returns a team by surrogate key, reading through the run cache.
func (r *EntityResolver) TeamByID(ctx context.Context, teamID int64) (team.Team, bool, error) {
	if cached, ok := r.teamsByID[teamID]; ok {
		return cached, true, nil
	}
	existing, found, err := r.repos.Teams.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("get team %d: %w", teamID, err)
	}
	if found {
		r.teamsByID[teamID] = existing
	}
	return existing, found, nil
}

func (r *EntityResolver) lookupLeague(ctx context.Context, code string) (league.League, bool, error) {
	if code == "" {
		return league.League{}, false, nil
	}
	if cached, ok := r.leagues[code]; ok {
		return cached, true, nil
	}
	existing, found, err := r.repos.Leagues.GetByCode(ctx, code)
	if err != nil {
		return league.League{}, false, fmt.Errorf("get league %s: %w", code, err)
	}
	if found {
		r.leagues[code] = existing
	}
	return existing, found, nil
}

func samePlayer(a, b player.Player) bool {
	if a.FirstName != b.FirstName || a.LastName != b.LastName {
		return false
	}
	if a.ClubID != b.ClubID || a.SeriesID != b.SeriesID || a.TeamID != b.TeamID {
		return false
	}
	if a.IsActive != b.IsActive || a.Wins != b.Wins || a.Losses != b.Losses {
		return false
	}
	switch {
	case a.StartingRating == nil && b.StartingRating == nil:
		return true
	case a.StartingRating == nil || b.StartingRating == nil:
		return false
	default:
		return *a.StartingRating == *b.StartingRating
	}
}
