// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
)

func setRequiredSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("ORGANIZER_KEY_SALT", "test-organizer-salt")
	t.Setenv("EVENT_SLUG_SALT", "test-slug-salt")
	t.Setenv("TOKEN_SECRET", "test-token-secret")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "convene.db")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("unexpected default base URL %s", cfg.BaseURL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "env.db")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "flag.db"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "flag.db" {
		t.Errorf("CLI should override env: expected flag.db, got %s", cfg.DatabaseURL)
	}
}

func TestParseFlags_ConfigFile(t *testing.T) {
	setRequiredSecrets(t)
	os.Unsetenv("PORT")
	os.Unsetenv("DATABASE_URL")

	path := filepath.Join(t.TempDir(), "convene.yaml")
	err := os.WriteFile(path, []byte("port: 7100\ndatabase_url: file.db\nbase_url: https://convene.example.com\n"), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseFlags([]string{"-c", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 7100 {
		t.Errorf("expected port 7100 from file, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "file.db" {
		t.Errorf("expected database URL from file, got %s", cfg.DatabaseURL)
	}
	if cfg.BaseURL != "https://convene.example.com" {
		t.Errorf("expected base URL from file, got %s", cfg.BaseURL)
	}
}

func TestParseFlags_EnvOverridesFile(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "env.db")

	path := filepath.Join(t.TempDir(), "convene.yaml")
	if err := os.WriteFile(path, []byte("port: 7100\ndatabase_url: file.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseFlags([]string{"-c", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("env should override file: expected 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "env.db" {
		t.Errorf("env should override file: expected env.db, got %s", cfg.DatabaseURL)
	}
}

func TestParseFlags_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing database URL", "DATABASE_URL"},
		{"missing organizer salt", "ORGANIZER_KEY_SALT"},
		{"missing slug salt", "EVENT_SLUG_SALT"},
		{"missing token secret", "TOKEN_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredSecrets(t)
			t.Setenv("DATABASE_URL", "convene.db")
			t.Setenv(tt.unset, "")

			if _, err := ParseFlags([]string{}); err == nil {
				t.Errorf("Expected error with %s unset", tt.unset)
			}
		})
	}
}

func TestParseFlags_DefaultPort(t *testing.T) {
	setRequiredSecrets(t)
	os.Unsetenv("PORT")
	t.Setenv("DATABASE_URL", "convene.db")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 4270 {
		t.Errorf("expected default port 4270, got %d", cfg.Port)
	}
}

func TestParseFlags_BadConfigFile(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("DATABASE_URL", "convene.db")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := ParseFlags([]string{"-c", path}); err == nil {
		t.Error("Expected error for unparseable config file")
	}
}
