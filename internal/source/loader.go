package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/panics"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/identity"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
)

const (
	leaguesDir    = "leagues"
	playersFile   = "players.json"
	matchesFile   = "match_history.json"
	schedulesFile = "schedules.json"
	leagueFile    = "league.json"
)

// League is the decoded content of one league directory.
type League struct {
	Code            string
	Name            string
	Players         []PlayerRecord
	PlayerIndexes   []int
	Matches         []MatchRecord
	MatchIndexes    []int
	Schedules       []ScheduleRecord
	ScheduleIndexes []int
	Errors          []cycle.RecordError
}

// Bundle is every league loaded for a cycle, ordered by league code.
type Bundle struct {
	Leagues []League
}

func (b Bundle) RecordErrors() []cycle.RecordError {
	var out []cycle.RecordError
	for _, l := range b.Leagues {
		out = append(out, l.Errors...)
	}
	return out
}

// Loader decodes league directories under <dataDir>/leagues.
type Loader struct {
	dataDir string
	workers int
	logger  *logging.Logger
}

func NewLoader(dataDir string, workers int, logger *logging.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{dataDir: dataDir, workers: workers, logger: logger}
}

type fileTask struct {
	league string
	kind   cycle.Kind
	path   string
}

type fileResult struct {
	task      fileTask
	players   Decoded[PlayerRecord]
	matches   Decoded[MatchRecord]
	schedules Decoded[ScheduleRecord]
	missing   bool
	err       error
}

// Load decodes the files needed for kinds in every league of the scope. Decoding runs on a
// worker pool and never touches the database.
func (l *Loader) Load(ctx context.Context, scope cycle.Scope, kinds cycle.KindSet) (Bundle, error) {
	codes, err := l.leagueCodes(scope)
	if err != nil {
		return Bundle{}, err
	}

	leagues := make(map[string]*League, len(codes))
	tasks := make([]fileTask, 0, len(codes)*3)
	for _, code := range codes {
		dir := filepath.Join(l.dataDir, leaguesDir, code)
		item := &League{Code: identity.LeagueCode(code), Name: identity.LeagueCode(code)}
		if name, err := readLeagueName(filepath.Join(dir, leagueFile)); err != nil {
			return Bundle{}, err
		} else if name != "" {
			item.Name = name
		}
		leagues[code] = item

		if kinds.Has(cycle.KindPlayers) {
			tasks = append(tasks, fileTask{league: code, kind: cycle.KindPlayers, path: filepath.Join(dir, playersFile)})
		}
		if kinds.Has(cycle.KindMatches) {
			tasks = append(tasks, fileTask{league: code, kind: cycle.KindMatches, path: filepath.Join(dir, matchesFile)})
		}
		if kinds.Has(cycle.KindSchedules) {
			tasks = append(tasks, fileTask{league: code, kind: cycle.KindSchedules, path: filepath.Join(dir, schedulesFile)})
		}
	}

	results := make(chan fileResult, len(tasks))
	if len(tasks) > 0 {
		pool, err := ants.NewPool(l.workers)
		if err != nil {
			return Bundle{}, fmt.Errorf("create loader pool: %w", err)
		}
		defer pool.Release()

		var workers sync.WaitGroup
		for _, task := range tasks {
			task := task
			workers.Add(1)
			if err := pool.Submit(func() {
				defer workers.Done()
				results <- l.decodeSafely(ctx, task)
			}); err != nil {
				workers.Done()
				return Bundle{}, fmt.Errorf("submit decode task: %w", err)
			}
		}
		workers.Wait()
	}
	close(results)

	for res := range results {
		if res.err != nil {
			return Bundle{}, res.err
		}
		item := leagues[res.task.league]
		if res.missing {
			l.logger.WarnContext(ctx, "source file missing", "league", item.Code, "kind", string(res.task.kind), "path", res.task.path)
			continue
		}
		switch res.task.kind {
		case cycle.KindPlayers:
			item.Players, item.PlayerIndexes = res.players.Records, res.players.Indexes
			item.Errors = append(item.Errors, res.players.Errors...)
		case cycle.KindMatches:
			item.Matches, item.MatchIndexes = res.matches.Records, res.matches.Indexes
			item.Errors = append(item.Errors, res.matches.Errors...)
		case cycle.KindSchedules:
			item.Schedules, item.ScheduleIndexes = res.schedules.Records, res.schedules.Indexes
			item.Errors = append(item.Errors, res.schedules.Errors...)
		}
	}

	out := Bundle{Leagues: make([]League, 0, len(codes))}
	for _, code := range codes {
		item := leagues[code]
		sort.SliceStable(item.Errors, func(i, j int) bool {
			if item.Errors[i].Kind != item.Errors[j].Kind {
				return item.Errors[i].Kind < item.Errors[j].Kind
			}
			return item.Errors[i].Index < item.Errors[j].Index
		})
		for _, recErr := range item.Errors {
			l.logger.WarnContext(ctx, "source record quarantined",
				"league", recErr.League,
				"kind", string(recErr.Kind),
				"index", recErr.Index,
				"reason", recErr.Reason,
			)
		}
		out.Leagues = append(out.Leagues, *item)
	}

	return out, nil
}

// decodeSafely turns a panic in a decoder into a fatal load error for that file.
func (l *Loader) decodeSafely(ctx context.Context, task fileTask) fileResult {
	var (
		catcher panics.Catcher
		res     fileResult
	)
	catcher.Try(func() { res = l.decodeFile(ctx, task) })
	if recovered := catcher.Recovered(); recovered != nil {
		return fileResult{task: task, err: fmt.Errorf("decode %s: %w", task.path, recovered.AsError())}
	}
	return res
}

func (l *Loader) decodeFile(ctx context.Context, task fileTask) fileResult {
	res := fileResult{task: task}
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	data, err := os.ReadFile(task.path)
	if errors.Is(err, fs.ErrNotExist) {
		res.missing = true
		return res
	}
	if err != nil {
		res.err = fmt.Errorf("read %s: %w", task.path, err)
		return res
	}

	code := identity.LeagueCode(task.league)
	switch task.kind {
	case cycle.KindPlayers:
		res.players, err = Decode[PlayerRecord](code, task.kind, data)
	case cycle.KindMatches:
		res.matches, err = Decode[MatchRecord](code, task.kind, data)
	case cycle.KindSchedules:
		res.schedules, err = Decode[ScheduleRecord](code, task.kind, data)
	}
	if err != nil {
		// A file that is not an array is quarantined as a whole.
		quarantined := []cycle.RecordError{{League: code, Kind: task.kind, Index: -1, Reason: err.Error()}}
		switch task.kind {
		case cycle.KindPlayers:
			res.players = Decoded[PlayerRecord]{Errors: quarantined}
		case cycle.KindMatches:
			res.matches = Decoded[MatchRecord]{Errors: quarantined}
		case cycle.KindSchedules:
			res.schedules = Decoded[ScheduleRecord]{Errors: quarantined}
		}
	}
	return res
}

func (l *Loader) leagueCodes(scope cycle.Scope) ([]string, error) {
	root := filepath.Join(l.dataDir, leaguesDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", root, err)
	}

	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !scope.Includes(entry.Name()) {
			continue
		}
		out = append(out, entry.Name())
	}
	if !scope.IsAll() && len(out) == 0 {
		return nil, fmt.Errorf("league %s not found under %s", scope.LeagueCode, root)
	}

	sort.Strings(out)
	return out, nil
}

func readLeagueName(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	var rec LeagueRecord
	if err := sonic.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return collapse(rec.Name), nil
}
