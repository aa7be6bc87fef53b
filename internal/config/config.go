// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

// BackendConfig holds one URL per league backend operation. Empty URLs are
// allowed at startup; the client reports them when the operation is used.
type BackendConfig struct {
	LoginURL           string `yaml:"login_url"`
	RegisterURL        string `yaml:"register_url"`
	MeURL              string `yaml:"me_url"`
	UpdateMeURL        string `yaml:"update_me_url"`
	TeamsURL           string `yaml:"teams_url"`
	TeamDetailURL      string `yaml:"team_detail_url"`
	CreateTeamURL      string `yaml:"create_team_url"`
	InvitationsURL     string `yaml:"invitations_url"`
	InviteByCodeURL    string `yaml:"invite_by_code_url"`
	AcceptInviteURL    string `yaml:"accept_invite_url"`
	DeclineInviteURL   string `yaml:"decline_invite_url"`
	PresignAvatarURL   string `yaml:"presign_avatar_url"`
	PresignTeamLogoURL string `yaml:"presign_team_logo_url"`
	GetEventURL        string `yaml:"get_event_url"`
	RegisterEventURL   string `yaml:"register_event_url"`

	TimeoutSeconds int `yaml:"timeout_seconds"`
}

func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type UploadConfig struct {
	AvatarMaxEdge int     `yaml:"avatar_max_edge"`
	LogoSize      int     `yaml:"logo_size"`
	Quality       float64 `yaml:"quality"`
	// Image uploads per minute allowed to one session.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type SessionConfig struct {
	TTLHours    int    `yaml:"ttl_hours"`
	CleanupCron string `yaml:"cleanup_cron"`
}

func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(s.TTLHours) * time.Hour
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		StaticDir   string `yaml:"static_dir"`
		// TrustProxy makes client IPs come from X-Forwarded-For.
		TrustProxy  bool   `yaml:"trust_proxy"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Backend  BackendConfig  `yaml:"backend"`
	Uploads  UploadConfig   `yaml:"uploads"`
	Session  SessionConfig  `yaml:"session"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// backendEnv maps each endpoint to the environment variables that may
// override it. The NEXT_PUBLIC_ names are accepted so existing deployment
// environments keep working.
var backendEnv = []struct {
	keys []string
	dst  func(*BackendConfig) *string
}{
	{[]string{"AXL_LOGIN_URL", "NEXT_PUBLIC_AXL_LOGIN_URL"}, func(b *BackendConfig) *string { return &b.LoginURL }},
	{[]string{"AXL_REGISTER_URL", "NEXT_PUBLIC_AXL_REGISTER_URL"}, func(b *BackendConfig) *string { return &b.RegisterURL }},
	{[]string{"AXL_ME_URL", "NEXT_PUBLIC_AXL_ME_URL"}, func(b *BackendConfig) *string { return &b.MeURL }},
	{[]string{"AXL_UPDATE_ME_URL", "NEXT_PUBLIC_AXL_UPDATE_ME_URL"}, func(b *BackendConfig) *string { return &b.UpdateMeURL }},
	{[]string{"AXL_TEAMS_URL", "NEXT_PUBLIC_AXL_TEAMS_URL"}, func(b *BackendConfig) *string { return &b.TeamsURL }},
	{[]string{"AXL_TEAM_DETAIL_URL", "NEXT_PUBLIC_AXL_TEAM_DETAIL_URL"}, func(b *BackendConfig) *string { return &b.TeamDetailURL }},
	{[]string{"AXL_CREATE_TEAM_URL", "NEXT_PUBLIC_AXL_CREATE_TEAM_URL"}, func(b *BackendConfig) *string { return &b.CreateTeamURL }},
	{[]string{"AXL_INVITATIONS_URL", "NEXT_PUBLIC_AXL_INVITATIONS_URL"}, func(b *BackendConfig) *string { return &b.InvitationsURL }},
	{[]string{"AXL_INVITE_BY_CODE_URL", "NEXT_PUBLIC_AXL_INVITE_BY_CODE_URL"}, func(b *BackendConfig) *string { return &b.InviteByCodeURL }},
	{[]string{"AXL_ACCEPT_INVITE_URL", "NEXT_PUBLIC_AXL_ACCEPT_INVITE_URL"}, func(b *BackendConfig) *string { return &b.AcceptInviteURL }},
	{[]string{"AXL_DECLINE_INVITE_URL", "NEXT_PUBLIC_AXL_DECLINE_INVITE_URL"}, func(b *BackendConfig) *string { return &b.DeclineInviteURL }},
	{[]string{"AXL_PRESIGN_AVATAR_URL", "NEXT_PUBLIC_AXL_PRESIGN_AVATAR_URL"}, func(b *BackendConfig) *string { return &b.PresignAvatarURL }},
	{[]string{"AXL_PRESIGN_TEAM_LOGO_URL", "NEXT_PUBLIC_AXL_PRESIGN_TEAM_LOGO_URL"}, func(b *BackendConfig) *string { return &b.PresignTeamLogoURL }},
	{[]string{"AXL_GET_EVENT_URL", "NEXT_PUBLIC_AXL_GET_EVENT_URL"}, func(b *BackendConfig) *string { return &b.GetEventURL }},
	{[]string{"AXL_REGISTER_EVENT_URL", "NEXT_PUBLIC_AXL_REGISTER_EVENT_URL"}, func(b *BackendConfig) *string { return &b.RegisterEventURL }},
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.applyBackendEnv(os.LookupEnv)
	cfg.applyDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyBackendEnv(lookup func(string) (string, bool)) {
	for _, entry := range backendEnv {
		for _, key := range entry.keys {
			if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
				*entry.dst(&c.Backend) = strings.TrimSpace(value)
				break
			}
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Uploads.AvatarMaxEdge == 0 {
		c.Uploads.AvatarMaxEdge = 900
	}
	if c.Uploads.LogoSize == 0 {
		c.Uploads.LogoSize = 512
	}
	if c.Uploads.Quality == 0 {
		c.Uploads.Quality = 0.82
	}
	if c.Uploads.RateLimit == 0 {
		c.Uploads.RateLimit = 6
	}
	if c.Uploads.RateBurst == 0 {
		c.Uploads.RateBurst = 3
	}
	if c.Session.CleanupCron == "" {
		c.Session.CleanupCron = "*/15 * * * *"
	}
	if c.App.StaticDir == "" {
		c.App.StaticDir = "build/bin/static"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Uploads.Quality <= 0 || c.Uploads.Quality > 1 {
		return fmt.Errorf("uploads quality must be in (0, 1]")
	}
	if c.Uploads.AvatarMaxEdge < 0 || c.Uploads.LogoSize < 0 {
		return fmt.Errorf("uploads dimensions must be positive")
	}

	if c.Session.CleanupCron != "" {
		if _, err := cron.ParseStandard(c.Session.CleanupCron); err != nil {
			return fmt.Errorf("invalid session cleanup cron %q: %w", c.Session.CleanupCron, err)
		}
	}

	return nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.App.Environment == "development"
}
