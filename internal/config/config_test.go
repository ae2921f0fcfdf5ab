package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/paddle-league/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PyroscopeRequiresServerWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CourtFloor != 4 {
		t.Fatalf("unexpected CourtFloor: got=%d want=4", cfg.CourtFloor)
	}
	if cfg.HealthMinScore != 0.8 {
		t.Fatalf("unexpected HealthMinScore: %v", cfg.HealthMinScore)
	}
	if cfg.FactPhaseAttempts != 2 {
		t.Fatalf("unexpected FactPhaseAttempts: got=%d want=2", cfg.FactPhaseAttempts)
	}
	if cfg.RunTimeout != 30*time.Minute {
		t.Fatalf("unexpected RunTimeout: %s", cfg.RunTimeout)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
	if cfg.PyroscopeAppName != cfg.ServiceName {
		t.Fatalf("expected PyroscopeAppName to default to service name, got %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_ImportTuning(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("COURT_FLOOR", "5")
	t.Setenv("COURT_MAX_MAP", "apta_chicago:6, nstf:5")
	t.Setenv("SERIES_PREFIX_MAP", "NSTF:Series,cnswpl:Division")
	t.Setenv("RELAX_FK_CHECKS", "true")
	t.Setenv("APP_LOG_LEVEL", "warning")
	t.Setenv("IMPORT_TIMEOUT", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got := cfg.CourtMax("apta_chicago"); got != 6 {
		t.Fatalf("unexpected CourtMax for APTA_CHICAGO: got=%d want=6", got)
	}
	if got := cfg.CourtMax("UNKNOWN"); got != 5 {
		t.Fatalf("unexpected CourtMax fallback: got=%d want=5", got)
	}
	if cfg.SeriesPrefixByLeague["CNSWPL"] != "Division" {
		t.Fatalf("unexpected series prefix map: %#v", cfg.SeriesPrefixByLeague)
	}
	if !cfg.RelaxFKChecks {
		t.Fatalf("expected RelaxFKChecks=true")
	}
	if cfg.LogLevel != logging.LevelWarn {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
	if cfg.RunTimeout != 90*time.Second {
		t.Fatalf("unexpected RunTimeout: %s", cfg.RunTimeout)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"HEALTH_MIN_SCORE":    "1.5",
		"HEALTH_MAX_DROP_PCT": "0",
		"COURT_FLOOR":         "0",
		"COURT_MAX_MAP":       "NSTF",
		"LOADER_WORKERS":      "none",
		"FACT_PHASE_ATTEMPTS": "0",
		"IMPORT_LOCK_KEY":     "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestParseIntMap(t *testing.T) {
	t.Parallel()

	out, err := parseIntMap("a:1, B:2 ,")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out["A"] != 1 || out["B"] != 2 || len(out) != 2 {
		t.Fatalf("unexpected map: %#v", out)
	}

	if _, err := parseIntMap("A:-1"); err == nil {
		t.Fatalf("expected error for non-positive value")
	}
	if _, err := parseIntMap(":3"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
