package main

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/usecase"
)

func TestParseRunInput(t *testing.T) {
	in, err := parseRunInput("nstf", "", true)
	require.NoError(t, err)
	require.Equal(t, cycle.ForLeague("NSTF"), in.Scope)
	require.Nil(t, in.Kinds)
	require.True(t, in.DryRun)

	in, err = parseRunInput("all", "matches,schedules", false)
	require.NoError(t, err)
	require.True(t, in.Scope.IsAll())
	require.True(t, in.Kinds.Has(cycle.KindMatches))
	require.True(t, in.Kinds.Has(cycle.KindSchedules))

	_, err = parseRunInput("all", "fixtures", false)
	require.Error(t, err)
}

func TestReportFailure(t *testing.T) {
	err := errors.Wrap(usecase.ErrLockUnavailable, "lock 1 is held")
	err = errors.WithHint(err, "another import is running against this database")

	var buf bytes.Buffer
	reportFailure(&buf, err)
	require.Contains(t, buf.String(), "import failed: lock 1 is held: import lock unavailable")
	require.Contains(t, buf.String(), "hint: another import is running against this database")
}
