package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/identity"
)

var lineHintPattern = regexp.MustCompile(`(?i)line\s*(\d+)\s*$`)

// CourtCandidate is a match record waiting for a court number.
type CourtCandidate struct {
	Index     int
	Date      time.Time
	Home      identity.TeamKey
	Away      identity.TeamKey
	Explicit  int
	MatchID   string
	PlayerIDs []string
}

func (c CourtCandidate) lineHint() int {
	found := lineHintPattern.FindStringSubmatch(c.MatchID)
	if found == nil {
		return 0
	}
	n, err := strconv.Atoi(found[1])
	if err != nil {
		return 0
	}
	return n
}

// CourtLimits bounds court numbers per league.
type CourtLimits struct {
	Floor int
	Max   func(leagueCode string) int
}

type CourtWarning struct {
	League string
	Date   string
	Home   string
	Away   string
	Reason string
}

// CourtPlan is the outcome of court assignment. Courts is aligned with the candidates;
// zero marks a skipped record.
type CourtPlan struct {
	Courts   []int
	Skipped  []cycle.RecordError
	Warnings []CourtWarning
	Slots    map[string]int
}

type courtGroupKey struct {
	league string
	date   string
	home   identity.TeamKey
	away   identity.TeamKey
}

// AssignCourts numbers the lines of every (league, date, home, away) group from 1 with no
// gaps. Explicit courts within the group size keep their slot; the rest are placed by
// reverse label order, the line hint of the match id, then input order. Input order only
// decides between lines with the same hint, so hinted groups number the same in any order.
func AssignCourts(candidates []CourtCandidate, limits CourtLimits) CourtPlan {
	plan := CourtPlan{
		Courts: make([]int, len(candidates)),
		Slots:  make(map[string]int),
	}
	floor := limits.Floor
	if floor < 1 {
		floor = 1
	}

	groups := make(map[courtGroupKey][]int)
	order := make([]courtGroupKey, 0)
	for pos, cand := range candidates {
		key := courtGroupKey{league: cand.Home.League, date: cand.Date.Format("2006-01-02"), home: cand.Home, away: cand.Away}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], pos)
	}

	for _, key := range order {
		members := groups[key]

		kept := make([]int, 0, len(members))
		seen := make(map[int]struct{})
		for _, pos := range members {
			explicit := candidates[pos].Explicit
			if explicit > 0 {
				if _, dup := seen[explicit]; dup {
					plan.Skipped = append(plan.Skipped, cycle.RecordError{
						League: key.league,
						Kind:   cycle.KindMatches,
						Index:  candidates[pos].Index,
						Reason: fmt.Sprintf("duplicate court %d for %s %s vs %s", explicit, key.date, key.home.Label, key.away.Label),
					})
					continue
				}
				seen[explicit] = struct{}{}
			}
			kept = append(kept, pos)
		}

		size := len(kept)
		taken := make([]bool, size+1)
		var free, high []int
		for _, pos := range kept {
			explicit := candidates[pos].Explicit
			switch {
			case explicit > 0 && explicit <= size:
				plan.Courts[pos] = explicit
				taken[explicit] = true
			case explicit > size:
				high = append(high, pos)
			default:
				free = append(free, pos)
			}
		}

		sort.SliceStable(free, func(i, j int) bool {
			a, b := candidates[free[i]], candidates[free[j]]
			if a.Home.Label != b.Home.Label {
				return a.Home.Label > b.Home.Label
			}
			if a.Away.Label != b.Away.Label {
				return a.Away.Label > b.Away.Label
			}
			ha, hb := a.lineHint(), b.lineHint()
			if ha != hb {
				if ha == 0 || hb == 0 {
					return hb == 0
				}
				return ha < hb
			}
			return a.Index < b.Index
		})
		sort.SliceStable(high, func(i, j int) bool {
			return candidates[high[i]].Explicit < candidates[high[j]].Explicit
		})

		next := 1
		for _, pos := range append(free, high...) {
			for next <= size && taken[next] {
				next++
			}
			plan.Courts[pos] = next
			taken[next] = true
		}

		if limit := courtMax(limits, key.league, floor); size > limit {
			plan.Warnings = append(plan.Warnings, CourtWarning{
				League: key.league,
				Date:   key.date,
				Home:   key.home.Label,
				Away:   key.away.Label,
				Reason: fmt.Sprintf("group has %d lines, league maximum is %d", size, limit),
			})
		}

		if slots := plan.Slots[key.league]; size > slots {
			plan.Slots[key.league] = size
		}
	}

	for leagueCode, slots := range plan.Slots {
		if slots < floor {
			plan.Slots[leagueCode] = floor
		}
	}

	plan.Warnings = append(plan.Warnings, doubleBookedPlayers(candidates, plan.Courts)...)
	return plan
}

func courtMax(limits CourtLimits, leagueCode string, floor int) int {
	if limits.Max == nil {
		return floor
	}
	if limit := limits.Max(leagueCode); limit > 0 {
		return limit
	}
	return floor
}

// doubleBookedPlayers reports players listed in two different meetings on the same date.
func doubleBookedPlayers(candidates []CourtCandidate, courts []int) []CourtWarning {
	type dayKey struct {
		league string
		date   string
		player string
	}

	first := make(map[dayKey]courtGroupKey)
	reported := make(map[dayKey]struct{})
	var out []CourtWarning
	for pos, cand := range candidates {
		if courts[pos] == 0 {
			continue
		}
		group := courtGroupKey{league: cand.Home.League, date: cand.Date.Format("2006-01-02"), home: cand.Home, away: cand.Away}
		for _, playerID := range cand.PlayerIDs {
			key := dayKey{league: group.league, date: group.date, player: playerID}
			prev, ok := first[key]
			if !ok {
				first[key] = group
				continue
			}
			if prev == group {
				continue
			}
			if _, done := reported[key]; done {
				continue
			}
			reported[key] = struct{}{}
			out = append(out, CourtWarning{
				League: group.league,
				Date:   group.date,
				Home:   group.home.Label,
				Away:   group.away.Label,
				Reason: fmt.Sprintf("player %s also plays %s vs %s", playerID, prev.home.Label, prev.away.Label),
			})
		}
	}
	return out
}
