package userstate

import (
	"time"

	"github.com/riskibarqy/paddle-league/internal/domain/identity"
)

// Association links an application user to a player natural key.
type Association struct {
	ID             int64
	UserID         string
	LeagueCode     string
	SourcePlayerID string
	IsPrimary      bool
	PlayerID       *int64
	ClubID         *int64
	NeedsReview    bool
	CreatedAt      time.Time
}

func (a Association) PlayerKey() identity.PlayerKey {
	return identity.PlayerKey{League: a.LeagueCode, SourceID: a.SourcePlayerID}
}

// LeagueContext is the league/team a user last selected in the application.
type LeagueContext struct {
	ID          int64
	UserID      string
	LeagueCode  string
	ClubName    string
	SeriesName  string
	TeamLabel   string
	LeagueID    *int64
	TeamID      *int64
	NeedsReview bool
	CreatedAt   time.Time
}

func (c LeagueContext) TeamKey() identity.TeamKey {
	return identity.TeamKey{League: c.LeagueCode, Club: c.ClubName, Series: c.SeriesName, Label: c.TeamLabel}
}

// Availability is a user's availability mark for one match date.
type Availability struct {
	ID             int64
	UserID         string
	LeagueCode     string
	SourcePlayerID string
	SeriesName     string
	MatchDate      time.Time
	Status         string
	Notes          string
	PlayerID       *int64
	SeriesID       *int64
	NeedsReview    bool
	CreatedAt      time.Time
}

func (a Availability) PlayerKey() identity.PlayerKey {
	return identity.PlayerKey{League: a.LeagueCode, SourceID: a.SourcePlayerID}
}

// Snapshot is the durable user state captured before a reload, keyed by natural keys.
type Snapshot struct {
	Associations []Association
	Contexts     []LeagueContext
	Availability []Availability
}

func (s Snapshot) Count() int64 {
	return int64(len(s.Associations) + len(s.Contexts) + len(s.Availability))
}

// Unresolved names a retained row whose natural key no longer resolves.
type Unresolved struct {
	Table  string
	RowID  int64
	UserID string
	Key    string
}

const (
	TableAssociations = "user_player_associations"
	TableContexts     = "user_contexts"
	TableAvailability = "player_availability"
)
