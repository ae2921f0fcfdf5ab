package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var setPattern = regexp.MustCompile(`^(\d+)-(\d+)(?:\s*\[(\d+)-(\d+)\])?$`)

// Set is one set of a line. Tiebreak points are kept apart from games.
type Set struct {
	Home         int
	Away         int
	HasTiebreak  bool
	TiebreakHome int
	TiebreakAway int
}

func (s Set) Winner() (Side, bool) {
	switch {
	case s.Home > s.Away:
		return SideHome, true
	case s.Away > s.Home:
		return SideAway, true
	case s.HasTiebreak && s.TiebreakHome > s.TiebreakAway:
		return SideHome, true
	case s.HasTiebreak && s.TiebreakAway > s.TiebreakHome:
		return SideAway, true
	default:
		return "", false
	}
}

func (s Set) String() string {
	out := strconv.Itoa(s.Home) + "-" + strconv.Itoa(s.Away)
	if s.HasTiebreak {
		out += " [" + strconv.Itoa(s.TiebreakHome) + "-" + strconv.Itoa(s.TiebreakAway) + "]"
	}
	return out
}

// Score is the parsed form of a score string such as "6-4, 7-6 [7-3]".
type Score struct {
	Sets []Set
}

func ParseScore(raw string) (Score, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Score{}, fmt.Errorf("score is empty")
	}

	parts := strings.Split(text, ",")
	sets := make([]Set, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		found := setPattern.FindStringSubmatch(item)
		if found == nil {
			return Score{}, fmt.Errorf("invalid set %q in score %q", item, raw)
		}

		set := Set{Home: atoi(found[1]), Away: atoi(found[2])}
		if found[3] != "" {
			set.HasTiebreak = true
			set.TiebreakHome = atoi(found[3])
			set.TiebreakAway = atoi(found[4])
		}
		sets = append(sets, set)
	}

	return Score{Sets: sets}, nil
}

func (s Score) String() string {
	parts := make([]string, 0, len(s.Sets))
	for _, set := range s.Sets {
		parts = append(parts, set.String())
	}
	return strings.Join(parts, ", ")
}

// SetsWon returns sets won by the home and away side.
func (s Score) SetsWon() (home, away int) {
	for _, set := range s.Sets {
		winner, ok := set.Winner()
		if !ok {
			continue
		}
		if winner == SideHome {
			home++
		} else {
			away++
		}
	}
	return home, away
}

func (s Score) Games() (home, away int) {
	for _, set := range s.Sets {
		home += set.Home
		away += set.Away
	}
	return home, away
}

// Winner reports the side that took more sets.
func (s Score) Winner() (Side, bool) {
	home, away := s.SetsWon()
	switch {
	case home > away:
		return SideHome, true
	case away > home:
		return SideAway, true
	default:
		return "", false
	}
}

func atoi(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}
