package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "name").
		From("clubs").
		Where(Eq("league_id", int64(3)), IsNull("logo_filename")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, name FROM clubs WHERE league_id = $1 AND logo_filename IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != int64(3) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("leagues").
		Columns("code", "name").
		Values("NSTF", "North Shore").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO leagues (code, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "NSTF" || args[1] != "North Shore" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("system_settings").
		Set("value", "4").
		SetExpr("updated_at", "NOW()").
		Where(Eq("key", "court_slots.NSTF")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE system_settings SET value = $1, updated_at = NOW() WHERE key = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "4" || args[1] != "court_slots.NSTF" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("teams").
		Where(Expr("league_id IN (SELECT id FROM leagues WHERE code = ?)", "NSTF")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM teams WHERE league_id IN (SELECT id FROM leagues WHERE code = $1)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "NSTF" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type testSeriesModel struct {
	ID       int64  `db:"id,omitzero"`
	LeagueID int64  `db:"league_id"`
	Name     string `db:"name"`
	internal string
}

func TestInsertModelOmitsZeroID(t *testing.T) {
	t.Run("zero id takes the default", func(t *testing.T) {
		query, args, err := InsertModel("series", testSeriesModel{LeagueID: 1, Name: "Series 2B"}, "RETURNING id")
		if err != nil {
			t.Fatalf("build insert model query: %v", err)
		}
		wantQuery := "INSERT INTO series (league_id, name) VALUES ($1, $2) RETURNING id"
		if query != wantQuery {
			t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
		}
		if len(args) != 2 {
			t.Fatalf("unexpected args: %+v", args)
		}
	})

	t.Run("explicit id is written", func(t *testing.T) {
		query, args, err := InsertModel("series", &testSeriesModel{ID: 7, LeagueID: 1, Name: "Series 2B"}, "")
		if err != nil {
			t.Fatalf("build insert model query: %v", err)
		}
		wantQuery := "INSERT INTO series (id, league_id, name) VALUES ($1, $2, $3)"
		if query != wantQuery {
			t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
		}
		if len(args) != 3 || args[0] != int64(7) {
			t.Fatalf("unexpected args: %+v", args)
		}
	})
}

func TestInsertModels(t *testing.T) {
	query, args, err := InsertModels("series", []testSeriesModel{
		{LeagueID: 1, Name: "Series 1"},
		{LeagueID: 1, Name: "Series 2"},
	}, "")
	if err != nil {
		t.Fatalf("build insert models query: %v", err)
	}

	wantQuery := "INSERT INTO series (league_id, name) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != "Series 2" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModels("series", []testSeriesModel{{LeagueID: 1, Name: "a"}, {ID: 4, LeagueID: 1, Name: "b"}}, ""); err == nil {
		t.Fatalf("expected error for mismatched columns")
	}
	if _, _, err := InsertModels[testSeriesModel]("series", nil, ""); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}

func TestTruncateBuilder(t *testing.T) {
	query, args, err := Truncate("match_scores").RestartIdentity().ToSQL()
	if err != nil {
		t.Fatalf("build truncate query: %v", err)
	}
	if want := "TRUNCATE TABLE match_scores RESTART IDENTITY"; query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := Truncate("schedule; DROP TABLE leagues").ToSQL(); err == nil {
		t.Fatalf("expected error for invalid table name")
	}
	if _, _, err := Truncate().ToSQL(); err == nil {
		t.Fatalf("expected error without tables")
	}
}

func TestSavepointStatements(t *testing.T) {
	query, err := Savepoint("dimensions_loaded")
	if err != nil || query != "SAVEPOINT dimensions_loaded" {
		t.Fatalf("unexpected savepoint statement %q (err %v)", query, err)
	}
	query, err = RollbackToSavepoint("dimensions_loaded")
	if err != nil || query != "ROLLBACK TO SAVEPOINT dimensions_loaded" {
		t.Fatalf("unexpected rollback statement %q (err %v)", query, err)
	}
	if _, err := Savepoint("Dimensions-Loaded"); err == nil {
		t.Fatalf("expected error for invalid savepoint name")
	}
}
