package usecase

import (
	"sort"
	"strconv"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
)

// Summary renders the end-of-run report for operators.
func (r Report) Summary() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	status := "rolled back"
	switch {
	case r.Committed:
		status = "committed"
	case r.DryRun && r.Aborted == "":
		status = "dry run (rolled back)"
	}

	_, _ = buf.WriteString("import run " + r.RunID + "\n")
	_, _ = buf.WriteString("  scope:    " + r.Scope.String() + "\n")
	_, _ = buf.WriteString("  kinds:    " + r.Kinds.String() + "\n")
	_, _ = buf.WriteString("  status:   " + status + "\n")
	_, _ = buf.WriteString("  duration: " + r.Duration.String() + "\n")
	if r.Aborted != "" {
		_, _ = buf.WriteString("  aborted:  " + r.Aborted + "\n")
	}

	_, _ = buf.WriteString("health\n")
	_, _ = buf.WriteString("  score:      " + strconv.FormatFloat(r.Health.Score, 'f', 3, 64) +
		" (min " + strconv.FormatFloat(r.Health.Threshold, 'f', 3, 64) + ")\n")
	_, _ = buf.WriteString("  orphans:    " + strconv.FormatInt(r.Health.OrphanTotal, 10) + "\n")
	_, _ = buf.WriteString("  resolution: " + strconv.FormatFloat(r.Restore.ResolutionRate(), 'f', 3, 64) + "\n")
	_, _ = buf.WriteString("  skipped:    " + strconv.Itoa(len(r.RecordErrors)) + " records\n")
	for _, drop := range r.Health.Drops {
		note := ")"
		if drop.Blocking {
			note = ", blocking)"
		}
		_, _ = buf.WriteString("  drop:       " + string(drop.Table) + " " +
			strconv.FormatInt(drop.Previous, 10) + " -> " + strconv.FormatInt(drop.Current, 10) +
			" (" + strconv.FormatFloat(drop.DropPct, 'f', 1, 64) + "%" + note + "\n")
	}

	_, _ = buf.WriteString("rows\n")
	for _, table := range cycle.CountedTables {
		n, ok := r.Health.Counts[table]
		if !ok {
			continue
		}
		line := "  " + string(table) + ": " + strconv.FormatInt(n, 10)
		if inserted, ok := r.Inserted[table]; ok {
			line += " (" + strconv.Itoa(inserted) + " inserted)"
		}
		_, _ = buf.WriteString(line + "\n")
	}

	created := r.Resolver.Created
	preserved := r.Resolver.Preserved
	_, _ = buf.WriteString("dimensions\n")
	_, _ = buf.WriteString("  created:   " + strconv.Itoa(created.Total()) + "\n")
	_, _ = buf.WriteString("  preserved: " + strconv.Itoa(preserved.Total()) + "\n")
	_, _ = buf.WriteString("  refreshed: " + strconv.Itoa(r.Resolver.Refreshed.Total()) + "\n")

	if len(r.CourtSlots) > 0 {
		leagues := make([]string, 0, len(r.CourtSlots))
		for code := range r.CourtSlots {
			leagues = append(leagues, code)
		}
		sort.Strings(leagues)
		_, _ = buf.WriteString("court slots\n")
		for _, code := range leagues {
			_, _ = buf.WriteString("  " + code + ": " + strconv.Itoa(r.CourtSlots[code]) + "\n")
		}
	}
	for _, w := range r.CourtWarnings {
		_, _ = buf.WriteString("court warning: " + w.League + " " + w.Date + " " + w.Home + " vs " + w.Away + ": " + w.Reason + "\n")
	}

	// Unresolved user rows come last so they are the first thing an operator sees.
	if len(r.Restore.Unresolved) > 0 {
		_, _ = buf.WriteString("NEEDS REVIEW: " + strconv.Itoa(len(r.Restore.Unresolved)) + " user rows lost their link\n")
		for _, item := range r.Restore.Unresolved {
			_, _ = buf.WriteString("  " + item.Table + " #" + strconv.FormatInt(item.RowID, 10) +
				" user=" + item.UserID + " key=" + item.Key + "\n")
		}
	}

	return buf.String()
}
