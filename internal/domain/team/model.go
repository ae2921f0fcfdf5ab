package team

import "fmt"

// Team is identified by (league, club, series, label).
type Team struct {
	ID          int64
	LeagueID    int64
	ClubID      int64
	SeriesID    int64
	Label       string
	DisplayName string
}

func (t Team) Validate() error {
	if t.LeagueID <= 0 {
		return fmt.Errorf("team league id is required")
	}
	if t.ClubID <= 0 {
		return fmt.Errorf("team club id is required")
	}
	if t.SeriesID <= 0 {
		return fmt.Errorf("team series id is required")
	}
	if t.Label == "" {
		return fmt.Errorf("team label is required")
	}

	return nil
}
