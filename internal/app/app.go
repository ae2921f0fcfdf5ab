package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/paddle-league/internal/config"
	"github.com/riskibarqy/paddle-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/paddle-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
	"github.com/riskibarqy/paddle-league/internal/source"
	"github.com/riskibarqy/paddle-league/internal/usecase"
)

// A run holds one transaction connection and one advisory lock connection.
const (
	dbMaxOpenConns    = 4
	dbConnMaxIdleTime = 5 * time.Minute
)

// Importer is the import engine wired to PostgreSQL.
type Importer struct {
	Service *usecase.ImportService
	db      *sqlx.DB
}

func NewImporter(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Importer, error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc := usecase.NewImportService(
		postgres.NewStore(db),
		source.NewLoader(cfg.DataDir, cfg.LoaderWorkers, logger),
		usecase.NewNamingBook(cfg.SeriesPrefixByLeague),
		importOptions(cfg),
		logger,
	)
	return &Importer{Service: svc, db: db}, nil
}

func (i *Importer) Close() error {
	if i == nil || i.db == nil {
		return nil
	}
	return i.db.Close()
}

// NewOfflineCheck runs the engine over the source files against an empty in-process store.
// It reports skipped records, court warnings and resulting counts without a database.
func NewOfflineCheck(cfg config.Config, logger *logging.Logger) *usecase.ImportService {
	return usecase.NewImportService(
		memory.NewStore(),
		source.NewLoader(cfg.DataDir, cfg.LoaderWorkers, logger),
		usecase.NewNamingBook(cfg.SeriesPrefixByLeague),
		importOptions(cfg),
		logger,
	)
}

func importOptions(cfg config.Config) usecase.ImportOptions {
	return usecase.ImportOptions{
		LockKey:           cfg.LockKey,
		HealthMinScore:    cfg.HealthMinScore,
		HealthMaxDropPct:  cfg.HealthMaxDropPct,
		CourtFloor:        cfg.CourtFloor,
		CourtMax:          cfg.CourtMax,
		RelaxFKChecks:     cfg.RelaxFKChecks,
		FactPhaseAttempts: cfg.FactPhaseAttempts,
	}
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", cfg.DatabaseURL(cfg.ServiceName),
		otelsql.WithDBName(cfg.DatabaseName()),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetConnMaxIdleTime(dbConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
