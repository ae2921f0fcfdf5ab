package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps("")
	require.NoError(t, err)
	require.Equal(t, 1, steps)

	steps, err = parseSteps(" 3 ")
	require.NoError(t, err)
	require.Equal(t, 3, steps)

	_, err = parseSteps("0")
	require.Error(t, err)
	_, err = parseSteps("two")
	require.Error(t, err)
}

func TestParseVersionAndTarget(t *testing.T) {
	version, err := parseVersion("1")
	require.NoError(t, err)
	require.Equal(t, 1, version)

	_, err = parseVersion("")
	require.ErrorContains(t, err, "required")
	_, err = parseVersion("-2")
	require.Error(t, err)

	target, err := parseTarget("2")
	require.NoError(t, err)
	require.Equal(t, uint(2), target)

	_, err = parseTarget("-1")
	require.Error(t, err)
}

func TestResolveMigrationsDir(t *testing.T) {
	dir := t.TempDir()

	got, err := resolveMigrationsDir(dir)
	require.NoError(t, err)
	require.Equal(t, dir, got)

	t.Chdir(t.TempDir())
	_, err = resolveMigrationsDir("")
	require.ErrorContains(t, err, "migration directory not found")
}
