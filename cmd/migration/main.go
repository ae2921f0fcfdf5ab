// Command migration applies the relational schema the importer runs against.
// system_settings and clubs.logo_filename are not migrated; the importer preflight adds them.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/paddle-league/internal/config"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
)

const applicationName = "paddle-league-migration"

var defaultMigrationDirs = []string{"./db/migrations", "/app/db/migrations"}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewJSON(cfg.LogLevel).With("service", applicationName, "env", cfg.AppEnv)

	app := &cli.App{
		Name:  "migration",
		Usage: "manage the league schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "migrations directory",
				EnvVars: []string{"MIGRATIONS_DIR", "MIGRATIONS_PATH"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply every pending migration",
				Action: withMigrator(cfg, func(c *cli.Context, m *migrate.Migrate) error {
					if err := ignoreNoChange(m.Up()); err != nil {
						return err
					}
					logger.Info("migrations applied")
					return nil
				}),
			},
			{
				Name:      "down",
				Usage:     "roll back migrations",
				ArgsUsage: "[steps]",
				Action: withMigrator(cfg, func(c *cli.Context, m *migrate.Migrate) error {
					steps, err := parseSteps(c.Args().First())
					if err != nil {
						return err
					}
					if err := ignoreNoChange(m.Steps(-steps)); err != nil {
						return err
					}
					logger.Info("migrations rolled back", "steps", steps)
					return nil
				}),
			},
			{
				Name:  "version",
				Usage: "print the applied version",
				Action: withMigrator(cfg, func(c *cli.Context, m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						_, _ = fmt.Fprintln(c.App.Writer, "version: none\ndirty: false")
						return nil
					}
					if err != nil {
						return fmt.Errorf("read version: %w", err)
					}
					_, _ = fmt.Fprintf(c.App.Writer, "version: %d\ndirty: %t\n", version, dirty)
					return nil
				}),
			},
			{
				Name:      "force",
				Usage:     "set the version without running migrations",
				ArgsUsage: "<version>",
				Action: withMigrator(cfg, func(c *cli.Context, m *migrate.Migrate) error {
					version, err := parseVersion(c.Args().First())
					if err != nil {
						return err
					}
					if err := m.Force(version); err != nil {
						return fmt.Errorf("force version %d: %w", version, err)
					}
					logger.Info("version forced", "version", version)
					return nil
				}),
			},
			{
				Name:      "goto",
				Aliases:   []string{"migrate"},
				Usage:     "migrate up or down to a version",
				ArgsUsage: "<version>",
				Action: withMigrator(cfg, func(c *cli.Context, m *migrate.Migrate) error {
					target, err := parseTarget(c.Args().First())
					if err != nil {
						return err
					}
					if err := ignoreNoChange(m.Migrate(target)); err != nil {
						return err
					}
					logger.Info("migrated", "version", target)
					return nil
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("migration failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

// withMigrator opens a migrator for the duration of one command.
func withMigrator(cfg config.Config, action func(*cli.Context, *migrate.Migrate) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		dir, err := resolveMigrationsDir(c.String("dir"))
		if err != nil {
			return err
		}

		m, err := migrate.New("file://"+filepath.ToSlash(dir), cfg.DatabaseURL(applicationName))
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			srcErr, dbErr := m.Close()
			if err := errors.Join(srcErr, dbErr); err != nil {
				_, _ = fmt.Fprintf(c.App.ErrWriter, "close migrator: %v\n", err)
			}
		}()

		return action(c, m)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func parseSteps(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", raw, err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("a version argument is required")
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("a target version argument is required")
	}
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

// resolveMigrationsDir returns the first existing directory of the flag value and the
// default locations.
func resolveMigrationsDir(flagValue string) (string, error) {
	candidates := append([]string{strings.TrimSpace(flagValue)}, defaultMigrationDirs...)
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migration directory not found (checked --dir, %s)", strings.Join(defaultMigrationDirs, ", "))
}
