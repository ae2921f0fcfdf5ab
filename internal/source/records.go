package source

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// MatchRecord is one line of match_history.json.
type MatchRecord struct {
	Date          string  `json:"Date" validate:"required"`
	HomeTeam      string  `json:"Home Team" validate:"required"`
	AwayTeam      string  `json:"Away Team" validate:"required,nefield=HomeTeam"`
	HomePlayer1   string  `json:"Home Player 1"`
	HomePlayer1ID string  `json:"Home Player 1 ID"`
	HomePlayer2   string  `json:"Home Player 2"`
	HomePlayer2ID string  `json:"Home Player 2 ID"`
	AwayPlayer1   string  `json:"Away Player 1"`
	AwayPlayer1ID string  `json:"Away Player 1 ID"`
	AwayPlayer2   string  `json:"Away Player 2"`
	AwayPlayer2ID string  `json:"Away Player 2 ID"`
	Scores        string  `json:"Scores" validate:"required"`
	Winner        string  `json:"Winner" validate:"required,oneof=home away"`
	Court         *Int    `json:"Court,omitempty"`
	MatchID       *string `json:"match_id,omitempty"`
}

func (r *MatchRecord) normalize() {
	r.Date = strings.TrimSpace(r.Date)
	r.HomeTeam = collapse(r.HomeTeam)
	r.AwayTeam = collapse(r.AwayTeam)
	r.HomePlayer1ID = strings.TrimSpace(r.HomePlayer1ID)
	r.HomePlayer2ID = strings.TrimSpace(r.HomePlayer2ID)
	r.AwayPlayer1ID = strings.TrimSpace(r.AwayPlayer1ID)
	r.AwayPlayer2ID = strings.TrimSpace(r.AwayPlayer2ID)
	r.Winner = strings.ToLower(strings.TrimSpace(r.Winner))
	if r.Court != nil && *r.Court <= 0 {
		r.Court = nil
	}
	if r.MatchID != nil {
		id := strings.TrimSpace(*r.MatchID)
		if id == "" {
			r.MatchID = nil
		} else {
			r.MatchID = &id
		}
	}
}

// PlayerIDs returns the non-empty source player ids on the line.
func (r MatchRecord) PlayerIDs() []string {
	out := make([]string, 0, 4)
	for _, id := range []string{r.HomePlayer1ID, r.HomePlayer2ID, r.AwayPlayer1ID, r.AwayPlayer2ID} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// PlayerRecord is one entry of players.json.
type PlayerRecord struct {
	FirstName string  `json:"First Name"`
	LastName  string  `json:"Last Name" validate:"required_without=FirstName"`
	PlayerID  string  `json:"Player ID" validate:"required"`
	Club      string  `json:"Club" validate:"required"`
	Series    string  `json:"Series" validate:"required"`
	Team      *string `json:"Team,omitempty"`
	Wins      Int     `json:"Wins" validate:"min=0"`
	Losses    Int     `json:"Losses" validate:"min=0"`
	PTI       *Float  `json:"PTI,omitempty"`
}

func (r *PlayerRecord) normalize() {
	r.FirstName = collapse(r.FirstName)
	r.LastName = collapse(r.LastName)
	r.PlayerID = strings.TrimSpace(r.PlayerID)
	r.Club = collapse(r.Club)
	r.Series = collapse(r.Series)
	if r.Team != nil {
		label := collapse(*r.Team)
		if label == "" {
			r.Team = nil
		} else {
			r.Team = &label
		}
	}
}

// ScheduleRecord is one entry of schedules.json.
type ScheduleRecord struct {
	Date     string  `json:"date" validate:"required"`
	Time     string  `json:"time"`
	HomeTeam string  `json:"home_team" validate:"required"`
	AwayTeam string  `json:"away_team" validate:"required,nefield=HomeTeam"`
	Location *string `json:"location,omitempty"`
}

func (r *ScheduleRecord) normalize() {
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.HomeTeam = collapse(r.HomeTeam)
	r.AwayTeam = collapse(r.AwayTeam)
	if r.Location != nil {
		loc := strings.TrimSpace(*r.Location)
		r.Location = &loc
	}
}

// LeagueRecord is the optional league.json file.
type LeagueRecord struct {
	Name string `json:"name"`
}

// Int accepts a JSON number, a numeric string, or null.
type Int int

func (n *Int) UnmarshalJSON(data []byte) error {
	raw, err := scalarText(data)
	if err != nil || raw == "" {
		*n = 0
		return err
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return fmt.Errorf("invalid integer %q", raw)
		}
		v = int(f)
	}
	*n = Int(v)
	return nil
}

// Float accepts a JSON number, a numeric string, or null.
type Float float64

func (f *Float) UnmarshalJSON(data []byte) error {
	raw, err := scalarText(data)
	if err != nil || raw == "" {
		*f = 0
		return err
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", raw)
	}
	*f = Float(v)
	return nil
}

func scalarText(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := sonic.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	return string(trimmed), nil
}

func collapse(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
