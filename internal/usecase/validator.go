package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
)

const (
	weightCounts     = 0.4
	weightOrphans    = 0.4
	weightResolution = 0.2
)

// TableDrop is a table whose row count fell further than allowed since the last cycle.
// A blocking drop is on a dimension or fact table and fails the cycle whatever the score.
type TableDrop struct {
	Table    cycle.Table
	Previous int64
	Current  int64
	DropPct  float64
	Blocking bool
}

// HealthInput is everything the health score is computed from.
type HealthInput struct {
	Counts         cycle.TableCounts
	Previous       cycle.TableCounts
	Orphans        map[string]int64
	ResolutionRate float64
	SkippedRecords int
}

type HealthReport struct {
	Score          float64
	Threshold      float64
	MaxDropPct     float64
	Passed         bool
	Counts         cycle.TableCounts
	Previous       cycle.TableCounts
	Compared       int
	Drops          []TableDrop
	Orphans        map[string]int64
	OrphanTotal    int64
	ResolutionRate float64
	SkippedRecords int
}

// HealthValidator scores a freshly imported cycle before commit.
type HealthValidator struct {
	minScore   float64
	maxDropPct float64
	logger     *logging.Logger
}

func NewHealthValidator(minScore, maxDropPct float64, logger *logging.Logger) *HealthValidator {
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthValidator{minScore: minScore, maxDropPct: maxDropPct, logger: logger}
}

// Evaluate computes the score in [0,1]:
// 0.4 * (1 - dropped/compared tables) + 0.4 * (1 - orphans/rows) + 0.2 * resolution rate.
// The cycle passes when the score reaches the threshold and no blocking drop was found.
func (v *HealthValidator) Evaluate(in HealthInput) HealthReport {
	report := HealthReport{
		Threshold:      v.minScore,
		MaxDropPct:     v.maxDropPct,
		Counts:         in.Counts,
		Previous:       in.Previous,
		Orphans:        in.Orphans,
		ResolutionRate: clamp01(in.ResolutionRate),
		SkippedRecords: in.SkippedRecords,
	}

	for _, table := range cycle.CountedTables {
		prev, ok := in.Previous[table]
		if !ok || prev <= 0 {
			continue
		}
		report.Compared++
		cur := in.Counts[table]
		if cur >= prev {
			continue
		}
		drop := float64(prev-cur) * 100 / float64(prev)
		if drop > v.maxDropPct {
			report.Drops = append(report.Drops, TableDrop{
				Table:    table,
				Previous: prev,
				Current:  cur,
				DropPct:  drop,
				Blocking: !table.IsDurable(),
			})
		}
	}

	countScore := 1.0
	if report.Compared > 0 {
		countScore = 1 - float64(len(report.Drops))/float64(report.Compared)
	}

	for _, n := range in.Orphans {
		report.OrphanTotal += n
	}
	orphanScore := 1.0
	if rows := in.Counts.Total(); rows > 0 {
		orphanScore = clamp01(1 - float64(report.OrphanTotal)/float64(rows))
	} else if report.OrphanTotal > 0 {
		orphanScore = 0
	}

	report.Score = clamp01(weightCounts*countScore + weightOrphans*orphanScore + weightResolution*report.ResolutionRate)
	report.Passed = report.Score >= v.minScore && len(report.BlockingDrops()) == 0
	return report
}

// BlockingDrops returns the drops that fail the cycle on their own.
func (r HealthReport) BlockingDrops() []TableDrop {
	var out []TableDrop
	for _, drop := range r.Drops {
		if drop.Blocking {
			out = append(out, drop)
		}
	}
	return out
}

// Validate reads counts and orphans from the open cycle and scores them against the counts
// recorded by the last committed cycle of the same scope.
func (v *HealthValidator) Validate(ctx context.Context, tx cycle.Tx, scope cycle.Scope, resolutionRate float64, skipped int) (HealthReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HealthValidator.Validate")
	defer span.End()

	counts, err := tx.CountRows(ctx, scope)
	if err != nil {
		return HealthReport{}, fmt.Errorf("count rows: %w", err)
	}
	orphans, err := tx.CountOrphans(ctx, scope)
	if err != nil {
		return HealthReport{}, fmt.Errorf("count orphans: %w", err)
	}
	previous, err := LoadPreviousCounts(ctx, tx.Settings(), scope)
	if err != nil {
		return HealthReport{}, err
	}

	report := v.Evaluate(HealthInput{
		Counts:         counts,
		Previous:       previous,
		Orphans:        orphans,
		ResolutionRate: resolutionRate,
		SkippedRecords: skipped,
	})

	for _, drop := range report.Drops {
		v.logger.WarnContext(ctx, "row count dropped",
			"table", string(drop.Table),
			"previous", drop.Previous,
			"current", drop.Current,
			"drop_pct", drop.DropPct,
			"blocking", drop.Blocking,
		)
	}
	keys := make([]string, 0, len(report.Orphans))
	for key, n := range report.Orphans {
		if n > 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		v.logger.WarnContext(ctx, "orphan rows found", "foreign_key", key, "rows", report.Orphans[key])
	}
	v.logger.InfoContext(ctx, "health evaluated",
		"scope", scope.String(),
		"score", report.Score,
		"threshold", report.Threshold,
		"passed", report.Passed,
		"orphans", report.OrphanTotal,
	)
	return report, nil
}

func countsKey(scope cycle.Scope) string {
	return cycle.SettingLastCountsPrefix + scope.String()
}

// LoadPreviousCounts returns the counts recorded by the last committed cycle, or nil.
func LoadPreviousCounts(ctx context.Context, settings cycle.SettingsRepository, scope cycle.Scope) (cycle.TableCounts, error) {
	raw, found, err := settings.Get(ctx, countsKey(scope))
	if err != nil {
		return nil, fmt.Errorf("get previous counts: %w", err)
	}
	if !found || raw == "" {
		return nil, nil
	}

	var out cycle.TableCounts
	if err := sonic.UnmarshalString(raw, &out); err != nil {
		return nil, fmt.Errorf("decode previous counts: %w", err)
	}
	return out, nil
}

// SaveCounts records the counts of a committed cycle for the next delta check.
func SaveCounts(ctx context.Context, settings cycle.SettingsRepository, scope cycle.Scope, counts cycle.TableCounts) error {
	raw, err := sonic.MarshalString(counts)
	if err != nil {
		return fmt.Errorf("encode counts: %w", err)
	}
	if err := settings.Put(ctx, countsKey(scope), raw); err != nil {
		return fmt.Errorf("save counts: %w", err)
	}
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
