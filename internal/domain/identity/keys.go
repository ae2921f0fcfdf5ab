package identity

import "strings"

// ClubKey identifies a club by name within a league.
type ClubKey struct {
	League string
	Club   string
}

type SeriesKey struct {
	League string
	Series string
}

// TeamKey is the natural key of a team: league, owning club, series and the scraped label.
type TeamKey struct {
	League string
	Club   string
	Series string
	Label  string
}

func (k TeamKey) ClubKey() ClubKey {
	return ClubKey{League: k.League, Club: k.Club}
}

func (k TeamKey) SeriesKey() SeriesKey {
	return SeriesKey{League: k.League, Series: k.Series}
}

func (k TeamKey) IsZero() bool {
	return k == TeamKey{}
}

// PlayerKey identifies a player by the source-issued id within a league.
type PlayerKey struct {
	League   string
	SourceID string
}

// Keys carries surrogate keys produced by resolution. Zero means "not resolved".
type Keys struct {
	LeagueID int64
	ClubID   int64
	SeriesID int64
	TeamID   int64
	PlayerID int64
}

// Prior maps natural keys to the surrogate keys they held before a full reload.
type Prior struct {
	Leagues map[string]int64
	Clubs   map[ClubKey]int64
	Series  map[SeriesKey]int64
	Teams   map[TeamKey]int64
	Players map[PlayerKey]int64
}

func NewPrior() Prior {
	return Prior{
		Leagues: make(map[string]int64),
		Clubs:   make(map[ClubKey]int64),
		Series:  make(map[SeriesKey]int64),
		Teams:   make(map[TeamKey]int64),
		Players: make(map[PlayerKey]int64),
	}
}

func (p Prior) Len() int {
	return len(p.Leagues) + len(p.Clubs) + len(p.Series) + len(p.Teams) + len(p.Players)
}

// LeagueCode normalizes a league code for use as a key.
func LeagueCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Name trims and collapses inner whitespace so scraped names compare equal.
func Name(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
