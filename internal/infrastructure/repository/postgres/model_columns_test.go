package postgres

import (
	"reflect"
	"strings"
	"testing"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/usecase"
)

func TestRequiredColumnsCoverWrittenColumns(t *testing.T) {
	models := []struct {
		table cycle.Table
		model any
	}{
		{table: cycle.TableLeagues, model: leagueTableModel{}},
		{table: cycle.TableClubs, model: clubTableModel{}},
		{table: cycle.TableSeries, model: seriesTableModel{}},
		{table: cycle.TableTeams, model: teamTableModel{}},
		{table: cycle.TablePlayers, model: playerTableModel{}},
		{table: cycle.TableMatchScores, model: matchScoreTableModel{}},
		{table: cycle.TableSchedule, model: scheduleTableModel{}},
		{table: cycle.TableSeriesStats, model: seriesStatTableModel{}},
		{table: cycle.TableAssociations, model: associationTableModel{}},
		{table: cycle.TableContexts, model: userContextTableModel{}},
		{table: cycle.TableAvailability, model: availabilityTableModel{}},
	}

	required := make(map[cycle.Column]struct{}, len(usecase.RequiredColumns))
	for _, col := range usecase.RequiredColumns {
		required[col] = struct{}{}
	}

	for _, m := range models {
		typ := reflect.TypeOf(m.model)
		for i := 0; i < typ.NumField(); i++ {
			name, _, _ := strings.Cut(typ.Field(i).Tag.Get("db"), ",")
			col := cycle.Column{Table: string(m.table), Column: name}
			if col.Table == string(cycle.TableClubs) && name == "logo_filename" {
				continue
			}
			if _, ok := required[col]; !ok {
				t.Errorf("%s is written by %s but not checked by preflight", col.String(), typ.Name())
			}
		}
	}
}
