package source

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
)

func TestDecode_QuarantinesInvalidRecords(t *testing.T) {
	t.Parallel()

	payload := []byte(`[
		{"Date": "08-Oct-24", "Home Team": "Tennaqua - 22", "Away Team": "Michigan Shores - 22", "Scores": "6-4, 6-4", "Winner": "Home", "Court": "2", "match_id": "x_Line2"},
		{"Date": "08-Oct-24", "Home Team": "Tennaqua - 22", "Away Team": "Tennaqua - 22", "Scores": "6-4, 6-4", "Winner": "home"},
		{"Date": "08-Oct-24", "Home Team": "Tennaqua - 22", "Away Team": "Michigan Shores - 22", "Scores": "6-4, 6-4", "Winner": "draw"},
		"not an object",
		{"Date": "08-Oct-24", "Home Team": "  Tennaqua   - 22 ", "Away Team": "Michigan Shores - 22", "Scores": "6-1, 6-0", "Winner": "away", "Court": null}
	]`)

	out, err := Decode[MatchRecord]("NSTF", cycle.KindMatches, payload)
	require.NoError(t, err)
	require.Len(t, out.Records, 2)
	require.Equal(t, []int{0, 4}, out.Indexes)
	require.Len(t, out.Errors, 3)

	first := out.Records[0]
	require.Equal(t, "home", first.Winner)
	require.NotNil(t, first.Court)
	require.Equal(t, Int(2), *first.Court)
	require.Equal(t, "x_Line2", *first.MatchID)

	last := out.Records[1]
	require.Equal(t, "Tennaqua - 22", last.HomeTeam)
	require.Nil(t, last.Court)

	for i, want := range []int{1, 2, 3} {
		require.Equal(t, want, out.Errors[i].Index)
		require.Equal(t, "NSTF", out.Errors[i].League)
		require.Equal(t, cycle.KindMatches, out.Errors[i].Kind)
	}
}

func TestDecode_PlayerRecord(t *testing.T) {
	t.Parallel()

	payload := []byte(`[
		{"First Name": "Ross", "Last Name": "Freedman", "Player ID": "nndz-123", "Club": "Tennaqua", "Series": "Chicago 22", "Team": "Tennaqua - 22", "Wins": "5", "Losses": 2, "PTI": "41.5"},
		{"First Name": "No", "Last Name": "Id", "Club": "Tennaqua", "Series": "Chicago 22"},
		{"First Name": "Neg", "Last Name": "Wins", "Player ID": "nndz-9", "Club": "Tennaqua", "Series": "Chicago 22", "Wins": -1}
	]`)

	out, err := Decode[PlayerRecord]("APTA_CHICAGO", cycle.KindPlayers, payload)
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	require.Len(t, out.Errors, 2)

	rec := out.Records[0]
	require.Equal(t, Int(5), rec.Wins)
	require.Equal(t, Int(2), rec.Losses)
	require.NotNil(t, rec.PTI)
	require.InDelta(t, 41.5, float64(*rec.PTI), 0.0001)
	require.Equal(t, "Tennaqua - 22", *rec.Team)
}

func TestDecode_RejectsNonArray(t *testing.T) {
	t.Parallel()

	_, err := Decode[ScheduleRecord]("NSTF", cycle.KindSchedules, []byte(`{"date": "x"}`))
	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"08-Oct-24", "2024-10-08", "2024-10-08T19:30:00Z", "10/08/2024"} {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		require.Equal(t, "2024-10-08", got.Format("2006-01-02"), raw)
	}

	_, err := ParseDate("Oct 8th")
	require.Error(t, err)
}
