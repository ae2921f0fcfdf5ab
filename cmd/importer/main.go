package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/paddle-league/internal/app"
	"github.com/riskibarqy/paddle-league/internal/config"
	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
	"github.com/riskibarqy/paddle-league/internal/observability"
	"github.com/riskibarqy/paddle-league/internal/platform/logging"
	"github.com/riskibarqy/paddle-league/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

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

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cliApp := &cli.App{
		Name:  "importer",
		Usage: "reload scraped league data into the application database",
		Commands: []*cli.Command{
			runCommand(cfg, logger),
			checkCommand(cfg, logger),
			preflightCommand(cfg, logger),
		},
	}

	err = cliApp.RunContext(ctx, os.Args)
	stop()
	_ = logger.Sync()
	if err != nil {
		reportFailure(os.Stderr, err)
		os.Exit(1)
	}
}

var scopeFlags = []cli.Flag{
	&cli.StringFlag{Name: "league", Value: "all", Usage: "league code to reload, or all"},
	&cli.StringFlag{Name: "kinds", Usage: "comma separated subset of players,matches,schedules,stats; empty reloads everything"},
}

func runCommand(cfg config.Config, logger *logging.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run one import cycle against the database",
		Flags: append(append([]cli.Flag{}, scopeFlags...),
			&cli.BoolFlag{Name: "dry-run", Usage: "validate and roll back instead of committing"},
		),
		Action: func(c *cli.Context) error {
			in, err := parseRunInput(c.String("league"), c.String("kinds"), c.Bool("dry-run"))
			if err != nil {
				return err
			}

			shutdownTracing, err := observability.InitUptrace(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := shutdownTracing(ctx); err != nil {
					logger.Warn("uptrace shutdown failed", "error", err)
				}
			}()

			stopProfiling, err := observability.InitPyroscope(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := stopProfiling(); err != nil {
					logger.Warn("pyroscope stop failed", "error", err)
				}
			}()

			ctx, cancel := context.WithTimeout(c.Context, cfg.RunTimeout)
			defer cancel()

			importer, err := app.NewImporter(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := importer.Close(); err != nil {
					logger.Warn("close database failed", "error", err)
				}
			}()

			report, err := importer.Service.Run(ctx, in)
			fmt.Fprint(c.App.Writer, report.Summary())
			return err
		},
	}
}

func checkCommand(cfg config.Config, logger *logging.Logger) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "run the source files through the engine without a database",
		Flags: scopeFlags,
		Action: func(c *cli.Context) error {
			in, err := parseRunInput(c.String("league"), c.String("kinds"), true)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(c.Context, cfg.RunTimeout)
			defer cancel()

			report, err := app.NewOfflineCheck(cfg, logger).Run(ctx, in)
			fmt.Fprint(c.App.Writer, report.Summary())
			return err
		},
	}
}

func preflightCommand(cfg config.Config, logger *logging.Logger) *cli.Command {
	return &cli.Command{
		Name:  "preflight",
		Usage: "verify the schema and create the additive artifacts the engine needs",
		Action: func(c *cli.Context) error {
			importer, err := app.NewImporter(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = importer.Close() }()

			result, err := importer.Service.Preflight(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "schema ok: %d columns checked\n", len(result.Checked))
			for _, created := range result.Created {
				fmt.Fprintf(c.App.Writer, "created: %s\n", created)
			}
			return nil
		},
	}
}

func parseRunInput(league, kinds string, dryRun bool) (usecase.RunInput, error) {
	in := usecase.RunInput{Scope: cycle.ParseScope(league), DryRun: dryRun}
	if strings.TrimSpace(kinds) == "" {
		return in, nil
	}

	set, err := cycle.ParseKinds(kinds)
	if err != nil {
		return usecase.RunInput{}, errors.Wrap(err, "parse --kinds")
	}
	in.Kinds = set
	return in, nil
}

// reportFailure prints the abort reason with any hints and details attached to it.
func reportFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "import failed: %v\n", err)
	if details := errors.FlattenDetails(err); details != "" {
		fmt.Fprintf(w, "detail: %s\n", details)
	}
	if hints := errors.FlattenHints(err); hints != "" {
		fmt.Fprintf(w, "hint: %s\n", hints)
	}
}
