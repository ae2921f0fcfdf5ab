package match

import (
	"fmt"
	"time"
)

// Side names the team that won a line.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Match is one line (court) of a team meeting. Player ids are the source-issued ids and
// Scores keeps the scraped set text verbatim.
type Match struct {
	ID            int64
	LeagueID      int64
	MatchDate     time.Time
	HomeTeamID    int64
	AwayTeamID    int64
	HomeTeam      string
	AwayTeam      string
	HomePlayer1ID string
	HomePlayer2ID string
	AwayPlayer1ID string
	AwayPlayer2ID string
	Scores        string
	Winner        Side
	CourtNumber   int
	SourceMatchID string
}

func (m Match) Validate() error {
	if m.LeagueID <= 0 {
		return fmt.Errorf("match league id is required")
	}
	if m.MatchDate.IsZero() {
		return fmt.Errorf("match date is required")
	}
	if m.HomeTeamID <= 0 || m.AwayTeamID <= 0 {
		return fmt.Errorf("match teams are required")
	}
	if m.Winner != SideHome && m.Winner != SideAway {
		return fmt.Errorf("invalid match winner: %s", m.Winner)
	}
	if m.CourtNumber < 1 {
		return fmt.Errorf("match court number must be >= 1")
	}

	return nil
}

// PlayerIDs returns the non-empty source player ids on the line.
func (m Match) PlayerIDs() []string {
	out := make([]string, 0, 4)
	for _, id := range []string{m.HomePlayer1ID, m.HomePlayer2ID, m.AwayPlayer1ID, m.AwayPlayer2ID} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

func ParseSide(raw string) (Side, error) {
	switch Side(raw) {
	case SideHome, SideAway:
		return Side(raw), nil
	default:
		return "", fmt.Errorf("invalid winner %q", raw)
	}
}
