package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/userstate"
)

func TestReport_Summary(t *testing.T) {
	t.Parallel()

	report := Report{
		RunID:     "run-1",
		Scope:     cycle.ForLeague("NSTF"),
		Kinds:     cycle.FullKinds(),
		Committed: true,
		Duration:  1500 * time.Millisecond,
		Inserted:  map[cycle.Table]int{cycle.TableMatchScores: 2},
		Health: HealthReport{
			Score:     0.95,
			Threshold: 0.8,
			Counts:    cycle.TableCounts{cycle.TablePlayers: 4, cycle.TableMatchScores: 2},
			Drops: []TableDrop{
				{Table: cycle.TableSchedule, Previous: 10, Current: 2, DropPct: 80, Blocking: true},
			},
		},
		CourtSlots: map[string]int{"NSTF": 4},
		Restore: RestoreResult{
			Resolved: 3,
			Unresolved: []userstate.Unresolved{
				{Table: userstate.TableAssociations, RowID: 8, UserID: "user-b", Key: "NSTF/nndz-gone"},
			},
		},
	}

	out := report.Summary()
	require.Contains(t, out, "status:   committed")
	require.Contains(t, out, "score:      0.950 (min 0.800)")
	require.Contains(t, out, "match_scores: 2 (2 inserted)")
	require.Contains(t, out, "NSTF: 4")
	require.Contains(t, out, "drop:       schedule 10 -> 2 (80.0%, blocking)")
	require.Contains(t, out, "user_player_associations #8 user=user-b key=NSTF/nndz-gone")
	require.True(t, strings.HasSuffix(out, "key=NSTF/nndz-gone\n"))
}

func TestReport_SummaryStatus(t *testing.T) {
	t.Parallel()

	require.Contains(t, Report{DryRun: true}.Summary(), "dry run (rolled back)")

	aborted := Report{DryRun: true, Aborted: "health score below threshold"}.Summary()
	require.Contains(t, aborted, "status:   rolled back")
	require.Contains(t, aborted, "aborted:  health score below threshold")
}
