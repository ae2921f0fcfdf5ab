package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/paddle-league/internal/domain/identity"
)

func courtTeam(label, club string) identity.TeamKey {
	return identity.TeamKey{League: "APTA_CHICAGO", Club: club, Series: "Chicago 22", Label: label}
}

func courtDate(t *testing.T) time.Time {
	t.Helper()
	d, err := time.Parse("02-Jan-06", "08-Oct-24")
	require.NoError(t, err)
	return d
}

func TestAssignCourts_KeepsInputOrderForIdenticalLabels(t *testing.T) {
	t.Parallel()

	date := courtDate(t)
	home := courtTeam("Tennaqua - 22", "Tennaqua")
	away := courtTeam("Michigan Shores - 22", "Michigan Shores")

	plan := AssignCourts([]CourtCandidate{
		{Index: 0, Date: date, Home: home, Away: away},
		{Index: 1, Date: date, Home: home, Away: away},
	}, CourtLimits{Floor: 4})

	require.Equal(t, []int{1, 2}, plan.Courts)
	require.Empty(t, plan.Skipped)
	require.Empty(t, plan.Warnings)
	require.Equal(t, 4, plan.Slots["APTA_CHICAGO"])
}

func TestAssignCourts_ExplicitAndHints(t *testing.T) {
	t.Parallel()

	date := courtDate(t)
	home := courtTeam("Tennaqua - 22", "Tennaqua")
	away := courtTeam("Michigan Shores - 22", "Michigan Shores")

	plan := AssignCourts([]CourtCandidate{
		{Index: 0, Date: date, Home: home, Away: away, MatchID: "m_Line4"},
		{Index: 1, Date: date, Home: home, Away: away, Explicit: 2},
		{Index: 2, Date: date, Home: home, Away: away, MatchID: "m_Line1"},
		{Index: 3, Date: date, Home: home, Away: away, Explicit: 9},
		{Index: 4, Date: date, Home: home, Away: away},
	}, CourtLimits{Floor: 4})

	// explicit 2 keeps its slot, hints 1 then 4 fill, the unhinted line follows and the
	// out-of-range explicit court takes what is left.
	require.Equal(t, []int{3, 2, 1, 5, 4}, plan.Courts)
	require.Len(t, plan.Warnings, 1)
	require.Equal(t, 5, plan.Slots["APTA_CHICAGO"])
}

func TestAssignCourts_DuplicateExplicitCourtIsSkipped(t *testing.T) {
	t.Parallel()

	date := courtDate(t)
	home := courtTeam("Tennaqua - 22", "Tennaqua")
	away := courtTeam("Michigan Shores - 22", "Michigan Shores")

	plan := AssignCourts([]CourtCandidate{
		{Index: 0, Date: date, Home: home, Away: away, Explicit: 1},
		{Index: 1, Date: date, Home: home, Away: away, Explicit: 1},
		{Index: 2, Date: date, Home: home, Away: away},
	}, CourtLimits{Floor: 4, Max: func(string) int { return 6 }})

	require.Equal(t, []int{1, 0, 2}, plan.Courts)
	require.Len(t, plan.Skipped, 1)
	require.Equal(t, 1, plan.Skipped[0].Index)
}

func TestAssignCourts_UniqueContiguousPerGroup(t *testing.T) {
	t.Parallel()

	date := courtDate(t)
	tennaqua := courtTeam("Tennaqua - 22", "Tennaqua")
	shores := courtTeam("Michigan Shores - 22", "Michigan Shores")
	winnetka := courtTeam("Winnetka - 22", "Winnetka")

	candidates := []CourtCandidate{
		{Index: 0, Date: date, Home: tennaqua, Away: shores},
		{Index: 1, Date: date, Home: winnetka, Away: tennaqua, Explicit: 3},
		{Index: 2, Date: date, Home: tennaqua, Away: shores, Explicit: 7},
		{Index: 3, Date: date, Home: winnetka, Away: tennaqua},
		{Index: 4, Date: date.AddDate(0, 0, 7), Home: tennaqua, Away: shores},
		{Index: 5, Date: date, Home: winnetka, Away: tennaqua},
	}
	plan := AssignCourts(candidates, CourtLimits{Floor: 4})

	byGroup := map[string][]int{}
	for pos, cand := range candidates {
		key := cand.Date.Format("2006-01-02") + cand.Home.Label + cand.Away.Label
		byGroup[key] = append(byGroup[key], plan.Courts[pos])
	}
	for key, courts := range byGroup {
		seen := map[int]bool{}
		for _, c := range courts {
			require.False(t, seen[c], key)
			require.GreaterOrEqual(t, c, 1, key)
			require.LessOrEqual(t, c, len(courts), key)
			seen[c] = true
		}
	}
	require.Equal(t, 3, plan.Courts[1])
}

func TestAssignCourts_WarnsOnDoubleBookedPlayer(t *testing.T) {
	t.Parallel()

	date := courtDate(t)
	tennaqua := courtTeam("Tennaqua - 22", "Tennaqua")
	shores := courtTeam("Michigan Shores - 22", "Michigan Shores")
	winnetka := courtTeam("Winnetka - 22", "Winnetka")

	plan := AssignCourts([]CourtCandidate{
		{Index: 0, Date: date, Home: tennaqua, Away: shores, PlayerIDs: []string{"p1", "p2"}},
		{Index: 1, Date: date, Home: winnetka, Away: shores, PlayerIDs: []string{"p1", "p3"}},
		{Index: 2, Date: date, Home: winnetka, Away: shores, PlayerIDs: []string{"p1", "p4"}},
	}, CourtLimits{Floor: 4})

	require.Equal(t, []int{1, 1, 2}, plan.Courts)
	require.Len(t, plan.Warnings, 1)
	require.Contains(t, plan.Warnings[0].Reason, "p1")
}

func TestAssignCourts_LineHintsIgnoreInputOrder(t *testing.T) {
	t.Parallel()

	date := courtDate(t)
	home := courtTeam("Tennaqua - 22", "Tennaqua")
	away := courtTeam("Michigan Shores - 22", "Michigan Shores")
	ids := []string{"m_Line1", "m_Line2", "m_Line3", "m_Line4"}

	courtsByID := func(order []int) map[string]int {
		candidates := make([]CourtCandidate, len(order))
		for pos, i := range order {
			candidates[pos] = CourtCandidate{Index: pos, Date: date, Home: home, Away: away, MatchID: ids[i]}
		}
		plan := AssignCourts(candidates, CourtLimits{Floor: 4})
		out := make(map[string]int, len(order))
		for pos, cand := range candidates {
			out[cand.MatchID] = plan.Courts[pos]
		}
		return out
	}

	want := map[string]int{"m_Line1": 1, "m_Line2": 2, "m_Line3": 3, "m_Line4": 4}
	for _, order := range [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}} {
		require.Equal(t, want, courtsByID(order), "order %v", order)
	}
}
