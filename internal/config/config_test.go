package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const baseConfig = `app:
  name: "AXL"
  environment: "development"
  port: 8080
database:
  driver: "sqlite"
  filename: "data/axl.db"
backend:
  login_url: "https://api.example.com/login"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, baseConfig))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Uploads.AvatarMaxEdge != 900 {
		t.Fatalf("expected avatar max edge 900, got %d", cfg.Uploads.AvatarMaxEdge)
	}
	if cfg.Uploads.LogoSize != 512 {
		t.Fatalf("expected logo size 512, got %d", cfg.Uploads.LogoSize)
	}
	if cfg.Uploads.Quality != 0.82 {
		t.Fatalf("expected quality 0.82, got %v", cfg.Uploads.Quality)
	}
	if cfg.Backend.LoginURL != "https://api.example.com/login" {
		t.Fatalf("unexpected login url %q", cfg.Backend.LoginURL)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development environment")
	}
}

func TestBackendEnvOverrides(t *testing.T) {
	cfg := &Config{}
	cfg.Backend.MeURL = "https://from-yaml/me"
	env := map[string]string{
		"NEXT_PUBLIC_AXL_TEAMS_URL": "https://legacy/teams",
		"AXL_ME_URL":                "https://env/me",
		"NEXT_PUBLIC_AXL_ME_URL":    "https://legacy/me",
	}
	cfg.applyBackendEnv(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})

	if cfg.Backend.MeURL != "https://env/me" {
		t.Fatalf("expected AXL_ME_URL to win, got %q", cfg.Backend.MeURL)
	}
	if cfg.Backend.TeamsURL != "https://legacy/teams" {
		t.Fatalf("expected legacy teams url, got %q", cfg.Backend.TeamsURL)
	}
	if cfg.Backend.LoginURL != "" {
		t.Fatalf("expected login url to stay empty, got %q", cfg.Backend.LoginURL)
	}
}

func TestValidateRejectsBadCron(t *testing.T) {
	body := baseConfig + "session:\n  cleanup_cron: \"every now and then\"\n"
	_, err := Load(writeConfig(t, body))
	if err == nil {
		t.Fatal("expected invalid cron to fail validation")
	}
	if !strings.Contains(err.Error(), "cleanup cron") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsQualityOutOfRange(t *testing.T) {
	body := baseConfig + "uploads:\n  quality: 1.5\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected quality above 1 to fail validation")
	}
}

func TestValidateRequiresDatabaseFilename(t *testing.T) {
	cfg := &Config{}
	cfg.App.Name = "AXL"
	cfg.App.Port = 8080
	cfg.Database.Driver = "sqlite"
	cfg.Uploads.Quality = 0.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing filename to fail validation")
	}
}
