package cycle

import "testing"

func TestParseKinds(t *testing.T) {
	t.Parallel()

	full, err := ParseKinds("")
	if err != nil {
		t.Fatalf("parse empty kinds: %v", err)
	}
	if !full.IsFull() {
		t.Fatalf("expected empty kinds to select every kind")
	}

	partial, err := ParseKinds(" Matches,stats ")
	if err != nil {
		t.Fatalf("parse kinds: %v", err)
	}
	if partial.IsFull() || !partial.Has(KindMatches) || !partial.Has(KindStats) || partial.Has(KindPlayers) {
		t.Fatalf("unexpected kinds: %s", partial)
	}
	if partial.String() != "matches,stats" {
		t.Fatalf("unexpected kinds string: %s", partial)
	}

	if _, err := ParseKinds("players,rankings"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestParseScope(t *testing.T) {
	t.Parallel()

	if !ParseScope("ALL").IsAll() || !ParseScope("").IsAll() {
		t.Fatalf("expected all scope")
	}
	scope := ParseScope(" nstf ")
	if scope.LeagueCode != "NSTF" || !scope.Includes("nstf") || scope.Includes("APTA_CHICAGO") {
		t.Fatalf("unexpected scope: %+v", scope)
	}
}
