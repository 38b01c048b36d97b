package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	cfg, err := Parse([]byte(`title: Habits`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.RolloverInterval.Duration() != 30*time.Second {
		t.Errorf("RolloverInterval = %v, want 30s", cfg.RolloverInterval.Duration())
	}
	if cfg.Storage.Driver != "file" {
		t.Errorf("Storage.Driver = %q, want file", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != "./habitboard-data" {
		t.Errorf("Storage.Path = %q, want ./habitboard-data", cfg.Storage.Path)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v, want info/console", cfg.Log)
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.Path != "./habitboard-data" {
		t.Errorf("Storage = %+v, want file in ./habitboard-data", cfg.Storage)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Errorf("Location() = %v, %v, want Local", loc, err)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Morning routine
port: 9090
timezone: Asia/Tokyo
rollover_interval: 1m
log:
  level: debug
  format: json
storage:
  driver: redis
  url: redis://localhost:6379/0
  namespace: me
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Morning routine" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Morning routine")
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.RolloverInterval.Duration() != time.Minute {
		t.Errorf("RolloverInterval = %v, want 1m", cfg.RolloverInterval.Duration())
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}

	sc := cfg.Storage.StoreConfig()
	if sc.Driver != "redis" || sc.URL != "redis://localhost:6379/0" || sc.Namespace != "me" {
		t.Errorf("StoreConfig() = %+v", sc)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc.String() != "Asia/Tokyo" {
		t.Errorf("Location() = %v, want Asia/Tokyo", loc)
	}
}

func TestParse_SQLiteDefaultPath(t *testing.T) {
	cfg, err := Parse([]byte("storage:\n  driver: sqlite\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Storage.Path != "./habitboard-data/habits.db" {
		t.Errorf("Storage.Path = %q, want ./habitboard-data/habits.db", cfg.Storage.Path)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("HB_TEST_DSN", "postgres://u:p@db:5432/habits")

	yaml := `
storage:
  driver: postgres
  dsn: ${HB_TEST_DSN}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Storage.DSN != "postgres://u:p@db:5432/habits" {
		t.Errorf("DSN = %q", cfg.Storage.DSN)
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	yaml := `
storage:
  driver: file
  path: ${HB_UNSET_DIR:-/tmp/habits}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Storage.Path != "/tmp/habits" {
		t.Errorf("Path = %q, want /tmp/habits", cfg.Storage.Path)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	yaml := `
storage:
  driver: redis
  url: ${HB_MISSING_URL}
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "storage.url") {
		t.Errorf("error = %v, want field-qualified storage.url", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantErrLike string
	}{
		{
			name:        "port too high",
			yaml:        `port: 70000`,
			wantErrLike: "port must be between",
		},
		{
			name:        "negative port",
			yaml:        `port: -1`,
			wantErrLike: "port must be between",
		},
		{
			name:        "rollover too fast",
			yaml:        `rollover_interval: 100ms`,
			wantErrLike: "rollover_interval must be at least",
		},
		{
			name:        "unknown timezone",
			yaml:        `timezone: Mars/Olympus`,
			wantErrLike: "timezone",
		},
		{
			name:        "bad log level",
			yaml:        "log:\n  level: loud\n",
			wantErrLike: "log.level",
		},
		{
			name:        "bad log format",
			yaml:        "log:\n  format: xml\n",
			wantErrLike: "log.format",
		},
		{
			name:        "unknown driver",
			yaml:        "storage:\n  driver: floppy\n",
			wantErrLike: "storage.driver",
		},
		{
			name:        "redis without url",
			yaml:        "storage:\n  driver: redis\n",
			wantErrLike: "url is required",
		},
		{
			name:        "redis wrong scheme",
			yaml:        "storage:\n  driver: redis\n  url: http://localhost\n",
			wantErrLike: "url scheme",
		},
		{
			name:        "postgres without dsn",
			yaml:        "storage:\n  driver: postgres\n",
			wantErrLike: "dsn is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("Parse() error = %v, want error containing %q", err, tt.wantErrLike)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte(`port: [`))
	if err == nil {
		t.Fatal("Parse() expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v, want 'failed to parse YAML'", err)
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "10s", 10 * time.Second, false},
		{"minutes", "2m", 2 * time.Minute, false},
		{"hours", "1h", 1 * time.Hour, false},
		{"combined", "1m30s", 90 * time.Second, false},
		{"invalid", "not-a-duration", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(`rollover_interval: ` + tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.RolloverInterval.Duration() != tt.want {
				t.Errorf("RolloverInterval = %v, want %v", cfg.RolloverInterval.Duration(), tt.want)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "") // set but empty

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitboard.yaml")
	if err := os.WriteFile(path, []byte("port: 9191\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Port)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}
