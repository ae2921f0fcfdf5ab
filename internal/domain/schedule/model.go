package schedule

import (
	"fmt"
	"time"
)

// Entry is a scheduled meeting between two teams.
type Entry struct {
	ID         int64
	LeagueID   int64
	MatchDate  time.Time
	MatchTime  string
	HomeTeamID int64
	AwayTeamID int64
	HomeTeam   string
	AwayTeam   string
	Location   string
}

func (e Entry) Validate() error {
	if e.LeagueID <= 0 {
		return fmt.Errorf("schedule league id is required")
	}
	if e.MatchDate.IsZero() {
		return fmt.Errorf("schedule date is required")
	}
	if e.HomeTeamID <= 0 || e.AwayTeamID <= 0 {
		return fmt.Errorf("schedule teams are required")
	}

	return nil
}
