package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	qb "github.com/riskibarqy/paddle-league/internal/platform/querybuilder"
)

const (
	createSettingsTableSQL = `CREATE TABLE IF NOT EXISTS system_settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	addClubLogoColumnSQL = `ALTER TABLE clubs ADD COLUMN IF NOT EXISTS logo_filename TEXT`
)

// SchemaInspector reads information_schema of the current schema.
type SchemaInspector struct {
	db *sqlx.DB
}

func NewSchemaInspector(db *sqlx.DB) *SchemaInspector {
	return &SchemaInspector{db: db}
}

type columnRow struct {
	Table  string `db:"table_name"`
	Column string `db:"column_name"`
}

func (s *SchemaInspector) MissingColumns(ctx context.Context, columns []cycle.Column) ([]cycle.Column, error) {
	tables := make([]any, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if _, ok := seen[col.Table]; ok {
			continue
		}
		seen[col.Table] = struct{}{}
		tables = append(tables, col.Table)
	}

	query, args, err := qb.Select("table_name", "column_name").From("information_schema.columns").
		Where(qb.Expr("table_schema = current_schema()"), qb.In("table_name", tables)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select columns query: %w", err)
	}

	var rows []columnRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select columns: %w", err)
	}

	present := make(map[cycle.Column]struct{}, len(rows))
	for _, row := range rows {
		present[cycle.Column{Table: row.Table, Column: row.Column}] = struct{}{}
	}

	var missing []cycle.Column
	for _, col := range columns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing, nil
}

func (s *SchemaInspector) TableExists(ctx context.Context, table string) (bool, error) {
	query, args, err := qb.Select("COUNT(*)").From("information_schema.tables").
		Where(qb.Expr("table_schema = current_schema()"), qb.Eq("table_name", table)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build table exists query: %w", err)
	}

	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return n > 0, nil
}

func (s *SchemaInspector) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	missing, err := s.MissingColumns(ctx, []cycle.Column{{Table: table, Column: column}})
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func (s *SchemaInspector) CreateSettingsTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSettingsTableSQL); err != nil {
		return fmt.Errorf("create system_settings: %w", err)
	}
	return nil
}

func (s *SchemaInspector) AddClubLogoColumn(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, addClubLogoColumnSQL); err != nil {
		return fmt.Errorf("add clubs.logo_filename: %w", err)
	}
	return nil
}
