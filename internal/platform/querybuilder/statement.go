package querybuilder

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern accepts the lower-case unquoted names this schema uses. Names that reach
// statements without placeholders must pass it.
var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdentifier(kind, name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}

type TruncateBuilder struct {
	tables          []string
	restartIdentity bool
}

func Truncate(tables ...string) *TruncateBuilder {
	return &TruncateBuilder{tables: tables}
}

// RestartIdentity resets the sequences owned by the truncated tables.
func (b *TruncateBuilder) RestartIdentity() *TruncateBuilder {
	b.restartIdentity = true
	return b
}

func (b *TruncateBuilder) ToSQL() (string, []any, error) {
	if len(b.tables) == 0 {
		return "", nil, fmt.Errorf("truncate table is required")
	}
	for _, table := range b.tables {
		if err := checkIdentifier("table", table); err != nil {
			return "", nil, err
		}
	}

	query := "TRUNCATE TABLE " + strings.Join(b.tables, ", ")
	if b.restartIdentity {
		query += " RESTART IDENTITY"
	}
	return query, nil, nil
}

func Savepoint(name string) (string, error) {
	if err := checkIdentifier("savepoint", name); err != nil {
		return "", err
	}
	return "SAVEPOINT " + name, nil
}

func RollbackToSavepoint(name string) (string, error) {
	if err := checkIdentifier("savepoint", name); err != nil {
		return "", err
	}
	return "ROLLBACK TO SAVEPOINT " + name, nil
}
