package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/identity"
	"github.com/riskibarqy/paddle-league/internal/domain/match"
	"github.com/riskibarqy/paddle-league/internal/domain/schedule"
	"github.com/riskibarqy/paddle-league/internal/domain/userstate"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
	"github.com/riskibarqy/paddle-league/internal/source"
)

const savepointDimensions = "dimensions_loaded"

// SourceLoader decodes the scraped files of a cycle.
type SourceLoader interface {
	Load(ctx context.Context, scope cycle.Scope, kinds cycle.KindSet) (source.Bundle, error)
}

// ImportOptions tunes one ImportService.
type ImportOptions struct {
	LockKey           int64
	HealthMinScore    float64
	HealthMaxDropPct  float64
	CourtFloor        int
	CourtMax          func(leagueCode string) int
	RelaxFKChecks     bool
	FactPhaseAttempts int
}

// RunInput selects what a cycle reloads.
type RunInput struct {
	Scope  cycle.Scope
	Kinds  cycle.KindSet
	DryRun bool
}

// Report is the end-of-run summary of a cycle.
type Report struct {
	RunID         string
	Scope         cycle.Scope
	Kinds         cycle.KindSet
	DryRun        bool
	Committed     bool
	StartedAt     time.Time
	Duration      time.Duration
	Preflight     PreflightResult
	Resolver      ResolverStats
	Inserted      map[cycle.Table]int
	RecordErrors  []cycle.RecordError
	CourtWarnings []CourtWarning
	CourtSlots    map[string]int
	Restore       RestoreResult
	Health        HealthReport
	Aborted       string
}

// ImportService runs full-refresh import cycles against one store.
type ImportService struct {
	store     cycle.Store
	loader    SourceLoader
	naming    NamingBook
	opts      ImportOptions
	keeper    *UserStateKeeper
	validator *HealthValidator
	logger    *logging.Logger
	now       func() time.Time
}

func NewImportService(store cycle.Store, loader SourceLoader, naming NamingBook, opts ImportOptions, logger *logging.Logger) *ImportService {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.FactPhaseAttempts < 1 {
		opts.FactPhaseAttempts = 1
	}
	if opts.CourtFloor < 1 {
		opts.CourtFloor = 4
	}
	return &ImportService{
		store:     store,
		loader:    loader,
		naming:    naming,
		opts:      opts,
		keeper:    NewUserStateKeeper(logger),
		validator: NewHealthValidator(opts.HealthMinScore, opts.HealthMaxDropPct, logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Preflight runs the schema check on its own.
func (s *ImportService) Preflight(ctx context.Context) (PreflightResult, error) {
	return NewSchemaPreflight(s.store.Schema(), s.logger).Check(ctx)
}

// Run executes one cycle. The store is changed only when every phase succeeds, the health
// score passes and the run is not a dry run; any error leaves it as it was.
func (s *ImportService) Run(ctx context.Context, in RunInput) (report Report, err error) {
	if in.Kinds == nil {
		in.Kinds = cycle.FullKinds()
	}
	kinds := effectiveKinds(in.Kinds)

	report = Report{
		RunID:     uuid.NewString(),
		Scope:     in.Scope,
		Kinds:     kinds,
		DryRun:    in.DryRun,
		StartedAt: s.now(),
		Inserted:  make(map[cycle.Table]int),
	}
	logger := s.logger.With("run_id", report.RunID, "scope", in.Scope.String())

	ctx, span := StartRunSpan(ctx, "usecase.ImportService.Run")
	defer span.End()
	defer func() {
		report.Duration = s.now().Sub(report.StartedAt)
		if err != nil {
			report.Aborted = err.Error()
			span.RecordError(err)
			logger.ErrorContext(ctx, "import cycle aborted", "error", err, "fatal", IsFatal(err))
		}
	}()

	release, acquired, err := s.store.TryLock(ctx, s.opts.LockKey)
	if err != nil {
		return report, errors.Wrap(err, "acquire import lock")
	}
	if !acquired {
		err := errors.Wrapf(ErrLockUnavailable, "lock %d is held", s.opts.LockKey)
		return report, errors.WithHint(err, "another import is running against this database")
	}
	defer func() {
		if releaseErr := release(context.WithoutCancel(ctx)); releaseErr != nil {
			logger.WarnContext(ctx, "release import lock failed", "error", releaseErr)
		}
	}()

	report.Preflight, err = NewSchemaPreflight(s.store.Schema(), logger).Check(ctx)
	if err != nil {
		return report, err
	}

	bundle, err := s.loader.Load(ctx, in.Scope, kinds)
	if err != nil {
		return report, errors.Wrap(err, "load source files")
	}
	report.RecordErrors = append(report.RecordErrors, bundle.RecordErrors()...)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return report, errors.Wrap(err, "begin cycle transaction")
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.WarnContext(ctx, "rollback cycle failed", "error", rbErr)
		}
	}()

	full := kinds.IsFull()
	logger.InfoContext(ctx, "import cycle started", "kinds", kinds.String(), "full_refresh", full, "dry_run", in.DryRun)

	prior := identity.NewPrior()
	if full {
		prior, err = tx.DimensionKeys(ctx, in.Scope)
		if err != nil {
			return report, errors.Wrap(err, "capture dimension keys")
		}
	}

	snap, err := s.keeper.Snapshot(ctx, tx.UserState(), in.Scope)
	if err != nil {
		return report, err
	}

	if err := s.clear(ctx, tx, in.Scope, kinds, logger); err != nil {
		return report, err
	}

	resolver := NewEntityResolver(RepositoriesOf(tx), s.naming, prior, logger)
	pending, err := s.resolveDimensions(ctx, resolver, bundle, kinds, &report, logger)
	if err != nil {
		return report, err
	}
	report.Resolver = resolver.Stats()

	if err := tx.Savepoint(ctx, savepointDimensions); err != nil {
		return report, errors.Wrap(err, "savepoint after dimensions")
	}

	for attempt := 1; ; attempt++ {
		phase := factPhase{inserted: make(map[cycle.Table]int)}
		err = s.insertFacts(ctx, tx, resolver, kinds, pending, &phase, logger)
		if err == nil {
			report.Inserted = phase.inserted
			report.CourtWarnings = phase.warnings
			report.CourtSlots = phase.slots
			report.RecordErrors = append(report.RecordErrors, phase.skipped...)
			break
		}
		if ctx.Err() != nil || attempt >= s.opts.FactPhaseAttempts {
			return report, errors.Wrap(err, "insert facts")
		}
		logger.WarnContext(ctx, "fact phase failed, rolling back to savepoint", "attempt", attempt, "error", err)
		if rbErr := tx.RollbackToSavepoint(ctx, savepointDimensions); rbErr != nil {
			return report, errors.Wrap(rbErr, "rollback to savepoint")
		}
	}

	report.Restore, err = s.keeper.Restore(ctx, tx.UserState(), LookupFor(resolver), in.Scope, snap)
	if err != nil {
		return report, err
	}

	report.Health, err = s.validator.Validate(ctx, tx, in.Scope, report.Restore.ResolutionRate(), len(report.RecordErrors))
	if err != nil {
		return report, errors.Wrap(err, "validate cycle")
	}
	if !report.Health.Passed {
		var err error
		if blocking := report.Health.BlockingDrops(); len(blocking) > 0 && report.Health.Score >= report.Health.Threshold {
			err = errors.Wrapf(ErrHealthBelowThreshold, "%s lost %.0f%% of its rows", blocking[0].Table, blocking[0].DropPct)
			err = errors.WithHintf(err, "a drop above %.0f%% on a league table blocks the commit; check the source files or raise HEALTH_MAX_DROP_PCT", report.Health.MaxDropPct)
		} else {
			err = errors.Wrapf(ErrHealthBelowThreshold, "score %.3f is below %.3f", report.Health.Score, report.Health.Threshold)
		}
		return report, errors.WithDetailf(err, "%d tables dropped, %d orphan rows", len(report.Health.Drops), report.Health.OrphanTotal)
	}

	if in.DryRun {
		logger.InfoContext(ctx, "dry run finished, rolling back", "score", report.Health.Score)
		return report, nil
	}

	if err := SaveCounts(ctx, tx.Settings(), in.Scope, report.Health.Counts); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, errors.Wrap(err, "cycle interrupted before commit")
	}
	if err := tx.Commit(); err != nil {
		return report, errors.Wrap(err, "commit cycle")
	}
	committed = true
	report.Committed = true

	logger.InfoContext(ctx, "import cycle committed",
		"score", report.Health.Score,
		"skipped_records", len(report.RecordErrors),
		"unresolved_user_rows", len(report.Restore.Unresolved),
	)
	return report, nil
}

// effectiveKinds adds stats whenever matches are reloaded, since standings derive from them.
func effectiveKinds(kinds cycle.KindSet) cycle.KindSet {
	out := make(cycle.KindSet, len(kinds)+1)
	for k := range kinds {
		out[k] = struct{}{}
	}
	if out.Has(cycle.KindMatches) {
		out[cycle.KindStats] = struct{}{}
	}
	return out
}

// clear empties the tables a cycle rewrites. Facts go first, then dimensions children first.
// Dimensions are only cleared on a full refresh.
func (s *ImportService) clear(ctx context.Context, tx cycle.Tx, scope cycle.Scope, kinds cycle.KindSet, logger *logging.Logger) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.clear")
	defer span.End()

	full := kinds.IsFull()
	if full && s.opts.RelaxFKChecks {
		if err := tx.SetForeignKeyChecks(ctx, false); err != nil {
			return errors.Wrap(err, "relax foreign key checks")
		}
	}

	for _, table := range cycle.FactTables {
		if !full && !factSelected(kinds, table) {
			continue
		}
		if err := tx.Clear(ctx, scope, table); err != nil {
			return errors.Wrapf(err, "clear %s", table)
		}
	}
	if full {
		for _, table := range cycle.DimensionTables {
			if err := tx.Clear(ctx, scope, table); err != nil {
				return errors.Wrapf(err, "clear %s", table)
			}
		}
	}

	if full && s.opts.RelaxFKChecks {
		if err := tx.SetForeignKeyChecks(ctx, true); err != nil {
			return errors.Wrap(err, "restore foreign key checks")
		}
	}

	logger.InfoContext(ctx, "tables cleared", "kinds", kinds.String(), "dimensions", full)
	return nil
}

func factSelected(kinds cycle.KindSet, table cycle.Table) bool {
	for kind := range kinds {
		if t, ok := cycle.FactTableFor(kind); ok && t == table {
			return true
		}
	}
	return false
}

// pendingFacts are fact rows whose dimensions resolved, waiting for the fact phase.
type pendingFacts struct {
	leagueIDs  []int64
	matches    []match.Match
	candidates []CourtCandidate
	schedules  []schedule.Entry
}

type factPhase struct {
	inserted map[cycle.Table]int
	skipped  []cycle.RecordError
	warnings []CourtWarning
	slots    map[string]int
}

// resolveDimensions streams every decoded record through the resolver. Record-level failures
// are collected in the report; anything else aborts.
func (s *ImportService) resolveDimensions(ctx context.Context, resolver *EntityResolver, bundle source.Bundle, kinds cycle.KindSet, report *Report, logger *logging.Logger) (pendingFacts, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.resolveDimensions")
	defer span.End()

	var pending pendingFacts
	skip := func(leagueCode string, kind cycle.Kind, index int, err error) error {
		if !errors.Is(err, ErrRecordSkipped) {
			return err
		}
		recErr := cycle.RecordError{League: leagueCode, Kind: kind, Index: index, Reason: err.Error()}
		report.RecordErrors = append(report.RecordErrors, recErr)
		logger.WarnContext(ctx, "record skipped", "league", leagueCode, "kind", string(kind), "index", index, "reason", recErr.Reason)
		return nil
	}

	for _, lg := range bundle.Leagues {
		if err := ctx.Err(); err != nil {
			return pending, err
		}

		keys, err := resolver.Resolve(ctx, ResolveRequest{LeagueCode: lg.Code, LeagueName: lg.Name})
		if err != nil {
			if skipErr := skip(lg.Code, cycle.KindPlayers, -1, err); skipErr != nil {
				return pending, skipErr
			}
			continue
		}
		pending.leagueIDs = append(pending.leagueIDs, keys.LeagueID)

		if kinds.Has(cycle.KindPlayers) {
			for i, rec := range lg.Players {
				req := ResolveRequest{
					LeagueCode: lg.Code,
					ClubName:   rec.Club,
					SeriesName: rec.Series,
					Player: &PlayerAttributes{
						SourceID:  rec.PlayerID,
						FirstName: rec.FirstName,
						LastName:  rec.LastName,
						Wins:      int(rec.Wins),
						Losses:    int(rec.Losses),
					},
				}
				if rec.Team != nil {
					req.TeamLabel = *rec.Team
				}
				if rec.PTI != nil {
					rating := float64(*rec.PTI)
					req.Player.StartingRating = &rating
				}
				if _, err := resolver.Resolve(ctx, req); err != nil {
					if skipErr := skip(lg.Code, cycle.KindPlayers, lg.PlayerIndexes[i], err); skipErr != nil {
						return pending, skipErr
					}
				}
			}
		}

		if kinds.Has(cycle.KindMatches) {
			for i, rec := range lg.Matches {
				index := lg.MatchIndexes[i]
				item, cand, err := s.resolveMatch(ctx, resolver, lg.Code, keys.LeagueID, index, rec)
				if err != nil {
					if skipErr := skip(lg.Code, cycle.KindMatches, index, err); skipErr != nil {
						return pending, skipErr
					}
					continue
				}
				pending.matches = append(pending.matches, item)
				pending.candidates = append(pending.candidates, cand)
			}
		}

		if kinds.Has(cycle.KindSchedules) {
			for i, rec := range lg.Schedules {
				index := lg.ScheduleIndexes[i]
				item, err := s.resolveSchedule(ctx, resolver, lg.Code, keys.LeagueID, rec)
				if err != nil {
					if skipErr := skip(lg.Code, cycle.KindSchedules, index, err); skipErr != nil {
						return pending, skipErr
					}
					continue
				}
				pending.schedules = append(pending.schedules, item)
			}
		}
	}

	logger.InfoContext(ctx, "dimensions resolved",
		"leagues", len(pending.leagueIDs),
		"matches", len(pending.matches),
		"schedules", len(pending.schedules),
	)
	return pending, nil
}

func (s *ImportService) resolveMatch(ctx context.Context, resolver *EntityResolver, leagueCode string, leagueID int64, index int, rec source.MatchRecord) (match.Match, CourtCandidate, error) {
	date, err := source.ParseDate(rec.Date)
	if err != nil {
		return match.Match{}, CourtCandidate{}, skipRecord("%s", err.Error())
	}
	if _, err := match.ParseScore(rec.Scores); err != nil {
		return match.Match{}, CourtCandidate{}, skipRecord("%s", err.Error())
	}
	winner, err := match.ParseSide(rec.Winner)
	if err != nil {
		return match.Match{}, CourtCandidate{}, skipRecord("%s", err.Error())
	}

	homeKeys, homeKey, err := resolver.ResolveTeamLabel(ctx, leagueCode, rec.HomeTeam)
	if err != nil {
		return match.Match{}, CourtCandidate{}, err
	}
	awayKeys, awayKey, err := resolver.ResolveTeamLabel(ctx, leagueCode, rec.AwayTeam)
	if err != nil {
		return match.Match{}, CourtCandidate{}, err
	}

	item := match.Match{
		LeagueID:      leagueID,
		MatchDate:     date,
		HomeTeamID:    homeKeys.TeamID,
		AwayTeamID:    awayKeys.TeamID,
		HomeTeam:      homeKey.Label,
		AwayTeam:      awayKey.Label,
		HomePlayer1ID: rec.HomePlayer1ID,
		HomePlayer2ID: rec.HomePlayer2ID,
		AwayPlayer1ID: rec.AwayPlayer1ID,
		AwayPlayer2ID: rec.AwayPlayer2ID,
		Scores:        rec.Scores,
		Winner:        winner,
	}
	cand := CourtCandidate{
		Index:     index,
		Date:      date,
		Home:      homeKey,
		Away:      awayKey,
		PlayerIDs: rec.PlayerIDs(),
	}
	if rec.Court != nil {
		cand.Explicit = int(*rec.Court)
	}
	if rec.MatchID != nil {
		item.SourceMatchID = *rec.MatchID
		cand.MatchID = *rec.MatchID
	}
	return item, cand, nil
}

func (s *ImportService) resolveSchedule(ctx context.Context, resolver *EntityResolver, leagueCode string, leagueID int64, rec source.ScheduleRecord) (schedule.Entry, error) {
	date, err := source.ParseDate(rec.Date)
	if err != nil {
		return schedule.Entry{}, skipRecord("%s", err.Error())
	}
	homeKeys, homeKey, err := resolver.ResolveTeamLabel(ctx, leagueCode, rec.HomeTeam)
	if err != nil {
		return schedule.Entry{}, err
	}
	awayKeys, awayKey, err := resolver.ResolveTeamLabel(ctx, leagueCode, rec.AwayTeam)
	if err != nil {
		return schedule.Entry{}, err
	}

	item := schedule.Entry{
		LeagueID:   leagueID,
		MatchDate:  date,
		MatchTime:  rec.Time,
		HomeTeamID: homeKeys.TeamID,
		AwayTeamID: awayKeys.TeamID,
		HomeTeam:   homeKey.Label,
		AwayTeam:   awayKey.Label,
	}
	if rec.Location != nil {
		item.Location = *rec.Location
	}
	return item, nil
}

// insertFacts writes match lines with assigned courts, schedules and recomputed standings.
// It may be repeated after a rollback to the dimensions savepoint.
func (s *ImportService) insertFacts(ctx context.Context, tx cycle.Tx, resolver *EntityResolver, kinds cycle.KindSet, pending pendingFacts, phase *factPhase, logger *logging.Logger) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.insertFacts")
	defer span.End()

	if kinds.Has(cycle.KindMatches) {
		plan := AssignCourts(pending.candidates, CourtLimits{Floor: s.opts.CourtFloor, Max: s.opts.CourtMax})
		phase.skipped = append(phase.skipped, plan.Skipped...)
		phase.warnings = plan.Warnings
		phase.slots = plan.Slots
		for _, w := range plan.Warnings {
			logger.WarnContext(ctx, "court assignment needs review",
				"league", w.League, "date", w.Date, "home", w.Home, "away", w.Away, "reason", w.Reason)
		}

		lines := make([]match.Match, 0, len(pending.matches))
		for i, item := range pending.matches {
			if plan.Courts[i] == 0 {
				continue
			}
			item.CourtNumber = plan.Courts[i]
			lines = append(lines, item)
		}
		if len(lines) > 0 {
			if err := tx.Matches().InsertBatch(ctx, lines); err != nil {
				return fmt.Errorf("insert match lines: %w", err)
			}
		}
		phase.inserted[cycle.TableMatchScores] = len(lines)

		for leagueCode, slots := range plan.Slots {
			if err := tx.Settings().Put(ctx, cycle.SettingCourtSlotsPrefix+leagueCode, strconv.Itoa(slots)); err != nil {
				return fmt.Errorf("save court slots for %s: %w", leagueCode, err)
			}
		}
	}

	if kinds.Has(cycle.KindSchedules) && len(pending.schedules) > 0 {
		if err := tx.Schedules().InsertBatch(ctx, pending.schedules); err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
		phase.inserted[cycle.TableSchedule] = len(pending.schedules)
	}

	if kinds.Has(cycle.KindStats) {
		n, err := s.recomputeStats(ctx, tx, resolver, pending.leagueIDs)
		if err != nil {
			return err
		}
		phase.inserted[cycle.TableSeriesStats] = n
	}

	return nil
}

// recomputeStats rebuilds series_stats of the cycle's leagues from the match rows now in
// the transaction, never from a scraped standings feed.
func (s *ImportService) recomputeStats(ctx context.Context, tx cycle.Tx, resolver *EntityResolver, leagueIDs []int64) (int, error) {
	var lines []match.Match
	for _, leagueID := range leagueIDs {
		items, err := tx.Matches().ListByLeague(ctx, leagueID)
		if err != nil {
			return 0, fmt.Errorf("list match lines of league %d: %w", leagueID, err)
		}
		lines = append(lines, items...)
	}

	seriesOf := make(map[int64]int64)
	for _, line := range lines {
		for _, teamID := range []int64{line.HomeTeamID, line.AwayTeamID} {
			if _, ok := seriesOf[teamID]; ok {
				continue
			}
			item, found, err := resolver.TeamByID(ctx, teamID)
			if err != nil {
				return 0, err
			}
			if found {
				seriesOf[teamID] = item.SeriesID
			}
		}
	}

	stats := BuildSeriesStats(lines, seriesOf)
	if len(stats) == 0 {
		return 0, nil
	}
	if err := tx.Standings().InsertBatch(ctx, stats); err != nil {
		return 0, fmt.Errorf("insert series stats: %w", err)
	}
	return len(stats), nil
}

// Unresolved returns the durable rows that need manual review.
func (r Report) Unresolved() []userstate.Unresolved {
	return r.Restore.Unresolved
}
