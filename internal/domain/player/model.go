package player

import "fmt"

// Player is a league member identified by the source-issued player id.
type Player struct {
	ID             int64
	LeagueID       int64
	SourcePlayerID string
	FirstName      string
	LastName       string
	ClubID         int64
	SeriesID       int64
	TeamID         int64
	IsActive       bool
	StartingRating *float64
	Wins           int
	Losses         int
}

func (p Player) Validate() error {
	if p.LeagueID <= 0 {
		return fmt.Errorf("player league id is required")
	}
	if p.SourcePlayerID == "" {
		return fmt.Errorf("player source id is required")
	}
	if p.FirstName == "" && p.LastName == "" {
		return fmt.Errorf("player name is required")
	}
	if p.Wins < 0 || p.Losses < 0 {
		return fmt.Errorf("player record cannot be negative")
	}

	return nil
}

func (p Player) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
