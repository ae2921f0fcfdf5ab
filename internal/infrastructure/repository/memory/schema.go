package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
)

// SchemaInspector answers schema questions for the in-process store. Every table and column
// exists unless a test removes it.
type SchemaInspector struct {
	mu      sync.Mutex
	dropped map[cycle.Column]struct{}
	tables  map[string]bool
	created []string
}

func NewSchemaInspector() *SchemaInspector {
	return &SchemaInspector{
		dropped: make(map[cycle.Column]struct{}),
		tables:  map[string]bool{string(cycle.TableSettings): true},
	}
}

// DropColumn makes a column report as missing.
func (s *SchemaInspector) DropColumn(table, column string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped[cycle.Column{Table: table, Column: column}] = struct{}{}
}

// DropTable makes an optional table report as missing. Only the settings table is tracked.
func (s *SchemaInspector) DropTable(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = false
}

// Created lists the artifacts created through this inspector, in order.
func (s *SchemaInspector) Created() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.created...)
}

func (s *SchemaInspector) MissingColumns(_ context.Context, columns []cycle.Column) ([]cycle.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []cycle.Column
	for _, col := range columns {
		if _, gone := s.dropped[col]; gone {
			out = append(out, col)
		}
	}
	return out, nil
}

func (s *SchemaInspector) TableExists(_ context.Context, table string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, tracked := s.tables[table]
	return !tracked || exists, nil
}

func (s *SchemaInspector) ColumnExists(_ context.Context, table, column string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, gone := s.dropped[cycle.Column{Table: table, Column: column}]
	return !gone, nil
}

func (s *SchemaInspector) CreateSettingsTable(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[string(cycle.TableSettings)] = true
	s.created = append(s.created, string(cycle.TableSettings))
	return nil
}

func (s *SchemaInspector) AddClubLogoColumn(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.dropped, cycle.Column{Table: string(cycle.TableClubs), Column: "logo_filename"})
	s.created = append(s.created, "clubs.logo_filename")
	return nil
}
