package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/paddle-league/internal/domain/club"
	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/domain/league"
	"github.com/riskibarqy/paddle-league/internal/domain/match"
	"github.com/riskibarqy/paddle-league/internal/domain/player"
	"github.com/riskibarqy/paddle-league/internal/domain/schedule"
	"github.com/riskibarqy/paddle-league/internal/domain/series"
	"github.com/riskibarqy/paddle-league/internal/domain/standing"
	"github.com/riskibarqy/paddle-league/internal/domain/team"
)

type leagueRepository struct {
	tx *Tx
}

func (r leagueRepository) GetByCode(_ context.Context, code string) (league.League, bool, error) {
	if err := r.tx.check(); err != nil {
		return league.League{}, false, err
	}
	item, ok := r.tx.st.leagueByCode(code)
	return item, ok, nil
}

func (r leagueRepository) Insert(_ context.Context, item league.League) (league.League, error) {
	if err := r.tx.check(); err != nil {
		return league.League{}, err
	}
	if err := item.Validate(); err != nil {
		return league.League{}, err
	}
	st := r.tx.st
	if _, dup := st.leagueByCode(item.Code); dup {
		return league.League{}, fmt.Errorf("duplicate league code %s", item.Code)
	}
	if _, dup := st.leagues[item.ID]; dup && item.ID > 0 {
		return league.League{}, fmt.Errorf("duplicate league id %d", item.ID)
	}
	item.ID = st.nextID(cycle.TableLeagues, item.ID)
	st.leagues[item.ID] = item
	return item, nil
}

func (r leagueRepository) UpdateName(_ context.Context, id int64, name string) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	item, ok := r.tx.st.leagues[id]
	if !ok {
		return fmt.Errorf("league %d not found", id)
	}
	item.Name = name
	r.tx.st.leagues[id] = item
	return nil
}

type clubRepository struct {
	tx *Tx
}

func (r clubRepository) GetByName(_ context.Context, leagueID int64, name string) (club.Club, bool, error) {
	if err := r.tx.check(); err != nil {
		return club.Club{}, false, err
	}
	for _, item := range r.tx.st.clubs {
		if item.LeagueID == leagueID && item.Name == name {
			return item, true, nil
		}
	}
	return club.Club{}, false, nil
}

func (r clubRepository) Insert(ctx context.Context, item club.Club) (club.Club, error) {
	if err := item.Validate(); err != nil {
		return club.Club{}, err
	}
	if _, dup, err := r.GetByName(ctx, item.LeagueID, item.Name); err != nil || dup {
		if err == nil {
			err = fmt.Errorf("duplicate club %d/%s", item.LeagueID, item.Name)
		}
		return club.Club{}, err
	}
	st := r.tx.st
	if _, dup := st.clubs[item.ID]; dup && item.ID > 0 {
		return club.Club{}, fmt.Errorf("duplicate club id %d", item.ID)
	}
	item.ID = st.nextID(cycle.TableClubs, item.ID)
	st.clubs[item.ID] = item
	return item, nil
}

type seriesRepository struct {
	tx *Tx
}

func (r seriesRepository) GetByName(_ context.Context, leagueID int64, name string) (series.Series, bool, error) {
	if err := r.tx.check(); err != nil {
		return series.Series{}, false, err
	}
	for _, item := range r.tx.st.series {
		if item.LeagueID == leagueID && item.Name == name {
			return item, true, nil
		}
	}
	return series.Series{}, false, nil
}

func (r seriesRepository) Insert(ctx context.Context, item series.Series) (series.Series, error) {
	if err := item.Validate(); err != nil {
		return series.Series{}, err
	}
	if _, dup, err := r.GetByName(ctx, item.LeagueID, item.Name); err != nil || dup {
		if err == nil {
			err = fmt.Errorf("duplicate series %d/%s", item.LeagueID, item.Name)
		}
		return series.Series{}, err
	}
	st := r.tx.st
	if _, dup := st.series[item.ID]; dup && item.ID > 0 {
		return series.Series{}, fmt.Errorf("duplicate series id %d", item.ID)
	}
	item.ID = st.nextID(cycle.TableSeries, item.ID)
	st.series[item.ID] = item
	return item, nil
}

func (r seriesRepository) UpdateDisplayName(_ context.Context, id int64, displayName string) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	item, ok := r.tx.st.series[id]
	if !ok {
		return fmt.Errorf("series %d not found", id)
	}
	item.DisplayName = displayName
	r.tx.st.series[id] = item
	return nil
}

type teamRepository struct {
	tx *Tx
}

func (r teamRepository) GetByID(_ context.Context, id int64) (team.Team, bool, error) {
	if err := r.tx.check(); err != nil {
		return team.Team{}, false, err
	}
	item, ok := r.tx.st.teams[id]
	return item, ok, nil
}

func (r teamRepository) GetByKey(_ context.Context, leagueID, clubID, seriesID int64, label string) (team.Team, bool, error) {
	if err := r.tx.check(); err != nil {
		return team.Team{}, false, err
	}
	for _, item := range r.tx.st.teams {
		if item.LeagueID == leagueID && item.ClubID == clubID && item.SeriesID == seriesID && item.Label == label {
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r teamRepository) Insert(ctx context.Context, item team.Team) (team.Team, error) {
	if err := item.Validate(); err != nil {
		return team.Team{}, err
	}
	if _, dup, err := r.GetByKey(ctx, item.LeagueID, item.ClubID, item.SeriesID, item.Label); err != nil || dup {
		if err == nil {
			err = fmt.Errorf("duplicate team %d/%s", item.LeagueID, item.Label)
		}
		return team.Team{}, err
	}
	st := r.tx.st
	if _, dup := st.teams[item.ID]; dup && item.ID > 0 {
		return team.Team{}, fmt.Errorf("duplicate team id %d", item.ID)
	}
	item.ID = st.nextID(cycle.TableTeams, item.ID)
	st.teams[item.ID] = item
	return item, nil
}

func (r teamRepository) UpdateDisplayName(_ context.Context, id int64, displayName string) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	item, ok := r.tx.st.teams[id]
	if !ok {
		return fmt.Errorf("team %d not found", id)
	}
	item.DisplayName = displayName
	r.tx.st.teams[id] = item
	return nil
}

type playerRepository struct {
	tx *Tx
}

func (r playerRepository) GetBySourceID(_ context.Context, leagueID int64, sourcePlayerID string) (player.Player, bool, error) {
	if err := r.tx.check(); err != nil {
		return player.Player{}, false, err
	}
	for _, item := range r.tx.st.players {
		if item.LeagueID == leagueID && item.SourcePlayerID == sourcePlayerID {
			return item, true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r playerRepository) Insert(ctx context.Context, item player.Player) (player.Player, error) {
	if err := item.Validate(); err != nil {
		return player.Player{}, err
	}
	if _, dup, err := r.GetBySourceID(ctx, item.LeagueID, item.SourcePlayerID); err != nil || dup {
		if err == nil {
			err = fmt.Errorf("duplicate player %d/%s", item.LeagueID, item.SourcePlayerID)
		}
		return player.Player{}, err
	}
	st := r.tx.st
	if _, dup := st.players[item.ID]; dup && item.ID > 0 {
		return player.Player{}, fmt.Errorf("duplicate player id %d", item.ID)
	}
	item.ID = st.nextID(cycle.TablePlayers, item.ID)
	st.players[item.ID] = item
	return item, nil
}

func (r playerRepository) UpdateAttributes(_ context.Context, item player.Player) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	existing, ok := r.tx.st.players[item.ID]
	if !ok {
		return fmt.Errorf("player %d not found", item.ID)
	}
	item.LeagueID = existing.LeagueID
	item.SourcePlayerID = existing.SourcePlayerID
	r.tx.st.players[item.ID] = item
	return nil
}

type matchRepository struct {
	tx *Tx
}

func (r matchRepository) InsertBatch(_ context.Context, items []match.Match) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	st := r.tx.st
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		item.ID = st.nextID(cycle.TableMatchScores, 0)
		st.matches[item.ID] = item
	}
	return nil
}

func (r matchRepository) ListByLeague(_ context.Context, leagueID int64) ([]match.Match, error) {
	if err := r.tx.check(); err != nil {
		return nil, err
	}
	out := make([]match.Match, 0)
	for _, item := range r.tx.st.matches {
		if leagueID == 0 || item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.MatchDate.Equal(b.MatchDate) {
			return a.MatchDate.Before(b.MatchDate)
		}
		if a.HomeTeamID != b.HomeTeamID {
			return a.HomeTeamID < b.HomeTeamID
		}
		if a.AwayTeamID != b.AwayTeamID {
			return a.AwayTeamID < b.AwayTeamID
		}
		if a.CourtNumber != b.CourtNumber {
			return a.CourtNumber < b.CourtNumber
		}
		return a.ID < b.ID
	})
	return out, nil
}

type scheduleRepository struct {
	tx *Tx
}

func (r scheduleRepository) InsertBatch(_ context.Context, items []schedule.Entry) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	st := r.tx.st
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		item.ID = st.nextID(cycle.TableSchedule, 0)
		st.schedules[item.ID] = item
	}
	return nil
}

type standingRepository struct {
	tx *Tx
}

func (r standingRepository) InsertBatch(_ context.Context, items []standing.SeriesStat) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	st := r.tx.st
	for _, item := range items {
		item.ID = st.nextID(cycle.TableSeriesStats, 0)
		st.stats[item.ID] = item
	}
	return nil
}

type settingsRepository struct {
	tx *Tx
}

func (r settingsRepository) Get(_ context.Context, key string) (string, bool, error) {
	if err := r.tx.check(); err != nil {
		return "", false, err
	}
	v, ok := r.tx.st.settings[key]
	return v, ok, nil
}

func (r settingsRepository) Put(_ context.Context, key, value string) error {
	if err := r.tx.check(); err != nil {
		return err
	}
	r.tx.st.settings[key] = value
	return nil
}
