package app

import (
	"testing"

	"github.com/riskibarqy/paddle-league/internal/config"
)

func TestImportOptions(t *testing.T) {
	cfg := config.Config{
		LockKey:           727001,
		HealthMinScore:    0.8,
		HealthMaxDropPct:  25,
		CourtFloor:        4,
		CourtMaxByLeague:  map[string]int64{"APTA_CHICAGO": 5},
		FactPhaseAttempts: 2,
	}

	opts := importOptions(cfg)
	if opts.LockKey != 727001 || opts.FactPhaseAttempts != 2 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if got := opts.CourtMax("apta_chicago"); got != 5 {
		t.Fatalf("unexpected court max: %d", got)
	}
	if got := opts.CourtMax("NSTF"); got != 4 {
		t.Fatalf("unexpected court max fallback: %d", got)
	}
}

func TestFormatDBQueryForTrace(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "whitespace collapsed",
			in:   " SELECT   *\nFROM match_scores \t WHERE league_id = $1 ",
			want: "SELECT * FROM match_scores WHERE league_id = $1",
		},
		{
			name: "batch insert keeps first tuple",
			in:   "INSERT INTO schedule (league_id, match_date) VALUES ($1, $2), ($3, $4), ($5, $6)",
			want: "INSERT INTO schedule (league_id, match_date) VALUES ($1, $2) /* 3 rows */",
		},
		{
			name: "single row insert with suffix untouched",
			in:   "INSERT INTO leagues (code, name) VALUES ($1, $2) RETURNING id",
			want: "INSERT INTO leagues (code, name) VALUES ($1, $2) RETURNING id",
		},
		{
			name: "batch insert suffix kept",
			in:   "INSERT INTO teams (label) VALUES ($1), ($2) RETURNING id",
			want: "INSERT INTO teams (label) VALUES ($1) RETURNING id /* 2 rows */",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatDBQueryForTrace(tc.in); got != tc.want {
				t.Fatalf("unexpected formatted query:\nwant: %s\ngot:  %s", tc.want, got)
			}
		})
	}
}
