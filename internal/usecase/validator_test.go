package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
)

func TestHealthValidator_Evaluate(t *testing.T) {
	t.Parallel()

	v := NewHealthValidator(0.8, 20, logging.NewNop())

	cases := []struct {
		name     string
		in       HealthInput
		score    float64
		passed   bool
		drops    int
		blocking int
	}{
		{
			name:   "first run",
			in:     HealthInput{Counts: cycle.TableCounts{cycle.TablePlayers: 10}, ResolutionRate: 1},
			score:  1,
			passed: true,
		},
		{
			name: "drop within tolerance",
			in: HealthInput{
				Counts:         cycle.TableCounts{cycle.TablePlayers: 85},
				Previous:       cycle.TableCounts{cycle.TablePlayers: 100},
				ResolutionRate: 1,
			},
			score:  1,
			passed: true,
		},
		{
			name: "every compared table dropped",
			in: HealthInput{
				Counts:         cycle.TableCounts{cycle.TablePlayers: 50},
				Previous:       cycle.TableCounts{cycle.TablePlayers: 100},
				ResolutionRate: 1,
			},
			score:    0.6,
			drops:    1,
			blocking: 1,
			passed:   false,
		},
		{
			name: "orphans and unresolved rows",
			in: HealthInput{
				Counts:         cycle.TableCounts{cycle.TablePlayers: 8, cycle.TableTeams: 2},
				Orphans:        map[string]int64{"players.team_id": 5},
				ResolutionRate: 0.5,
			},
			score:  0.4 + 0.4*0.5 + 0.2*0.5,
			passed: false,
		},
		{
			name: "fact table wiped blocks a high score",
			in: HealthInput{
				Counts: cycle.TableCounts{
					cycle.TableLeagues: 1, cycle.TableClubs: 4, cycle.TableSeries: 2,
					cycle.TableTeams: 4, cycle.TablePlayers: 10, cycle.TableMatchScores: 0,
				},
				Previous: cycle.TableCounts{
					cycle.TableLeagues: 1, cycle.TableClubs: 4, cycle.TableSeries: 2,
					cycle.TableTeams: 4, cycle.TablePlayers: 10, cycle.TableMatchScores: 40,
				},
				ResolutionRate: 1,
			},
			score:    0.4*5.0/6 + 0.6,
			drops:    1,
			blocking: 1,
			passed:   false,
		},
		{
			name: "durable table drop does not block",
			in: HealthInput{
				Counts: cycle.TableCounts{
					cycle.TableClubs: 4, cycle.TableTeams: 4, cycle.TablePlayers: 10, cycle.TableAssociations: 1,
				},
				Previous: cycle.TableCounts{
					cycle.TableClubs: 4, cycle.TableTeams: 4, cycle.TablePlayers: 10, cycle.TableAssociations: 5,
				},
				ResolutionRate: 1,
			},
			score:  0.4*0.75 + 0.6,
			drops:  1,
			passed: true,
		},
		{
			name: "orphans with no rows",
			in: HealthInput{
				Orphans:        map[string]int64{"players.team_id": 1},
				ResolutionRate: 1,
			},
			score:  0.6,
			passed: false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			report := v.Evaluate(tc.in)
			require.InDelta(t, tc.score, report.Score, 1e-9)
			require.Equal(t, tc.passed, report.Passed)
			require.Len(t, report.Drops, tc.drops)
		})
	}
}

func TestCountsRoundTripPerScope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tx, err := memory.NewStore().Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	counts := cycle.TableCounts{cycle.TablePlayers: 12, cycle.TableMatchScores: 40}
	require.NoError(t, SaveCounts(ctx, tx.Settings(), cycle.ForLeague("nstf"), counts))

	got, err := LoadPreviousCounts(ctx, tx.Settings(), cycle.ForLeague("NSTF"))
	require.NoError(t, err)
	require.Equal(t, counts, got)

	raw, found, err := tx.Settings().Get(ctx, "last_counts.NSTF")
	require.NoError(t, err)
	require.True(t, found)
	require.NotEmpty(t, raw)

	other, err := LoadPreviousCounts(ctx, tx.Settings(), cycle.AllLeagues())
	require.NoError(t, err)
	require.Nil(t, other)
}
