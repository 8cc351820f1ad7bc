package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.GitHub.PerPage != 100 {
		t.Errorf("Expected default per_page to be 100, got %d", config.GitHub.PerPage)
	}

	if config.RateLimit.AssetDelay != time.Second {
		t.Errorf("Expected default asset delay to be 1s, got %s", config.RateLimit.AssetDelay)
	}

	if len(config.Archive.SocialEndpoints) != len(DefaultSocialEndpoints) {
		t.Errorf("Expected %d social endpoints, got %d", len(DefaultSocialEndpoints), len(config.Archive.SocialEndpoints))
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "plain-token")
	t.Setenv("GHARCHIVER_TOKEN", "prefixed-token")
	t.Setenv("GHARCHIVER_API_URL", "http://localhost:8080/")
	t.Setenv("GHARCHIVER_OUTPUT_DIR", "/tmp/archive")
	t.Setenv("GHARCHIVER_ASSET_DELAY", "250ms")
	t.Setenv("GHARCHIVER_REQUESTS_PER_MINUTE", "30")
	t.Setenv("GHARCHIVER_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.GitHub.Token != "prefixed-token" {
		t.Errorf("Expected prefixed token to win, got %s", config.GitHub.Token)
	}
	if config.GitHub.APIURL != "http://localhost:8080/" {
		t.Errorf("Expected api url override, got %s", config.GitHub.APIURL)
	}
	if config.Output.BaseDirectory != "/tmp/archive" {
		t.Errorf("Expected output directory /tmp/archive, got %s", config.Output.BaseDirectory)
	}
	if config.RateLimit.AssetDelay != 250*time.Millisecond {
		t.Errorf("Expected asset delay 250ms, got %s", config.RateLimit.AssetDelay)
	}
	if config.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("Expected 30 requests per minute, got %d", config.RateLimit.RequestsPerMinute)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("GHARCHIVER_ASSET_DELAY", "soon")
	t.Setenv("GHARCHIVER_REQUESTS_PER_MINUTE", "many")

	err := DefaultConfig().LoadFromEnv()
	if err == nil {
		t.Fatal("Expected error for invalid environment values")
	}
	if !strings.Contains(err.Error(), "GHARCHIVER_ASSET_DELAY") || !strings.Contains(err.Error(), "GHARCHIVER_REQUESTS_PER_MINUTE") {
		t.Errorf("Expected both variables to be reported, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:      "relative api url",
			mutate:    func(c *Config) { c.GitHub.APIURL = "api.github.com" },
			wantError: "api_url",
		},
		{
			name:      "per page above API maximum",
			mutate:    func(c *Config) { c.GitHub.PerPage = 250 },
			wantError: "per_page",
		},
		{
			name:      "negative asset delay",
			mutate:    func(c *Config) { c.RateLimit.AssetDelay = -time.Second },
			wantError: "asset delay",
		},
		{
			name:      "zero retry attempts",
			mutate:    func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantError: "max_attempts",
		},
		{
			name:      "unknown social endpoint",
			mutate:    func(c *Config) { c.Archive.SocialEndpoints = []string{"followers", "stargazers"} },
			wantError: `unknown social endpoint "stargazers"`,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			wantError: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Expected error containing %q, got %v", tt.wantError, err)
			}
		})
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	config := DefaultConfig()
	config.Output.BaseDirectory = "/srv/archive"
	config.RateLimit.AssetDelay = 2 * time.Second
	config.Archive.Releases = false

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Config file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected file permissions 0600, got %v", info.Mode().Perm())
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Output.BaseDirectory != "/srv/archive" {
		t.Errorf("Expected base directory /srv/archive, got %s", loaded.Output.BaseDirectory)
	}
	if loaded.RateLimit.AssetDelay != 2*time.Second {
		t.Errorf("Expected asset delay 2s, got %s", loaded.RateLimit.AssetDelay)
	}
	if loaded.Archive.Releases {
		t.Error("Expected releases to be disabled")
	}
}

func TestLoadFromFileYAMLDurations(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `github:
  timeout: 45s
rate_limit:
  asset_delay: 1500ms
archive:
  social_endpoints: [followers, starred]
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.GitHub.Timeout != 45*time.Second {
		t.Errorf("Expected timeout 45s, got %s", config.GitHub.Timeout)
	}
	if config.RateLimit.AssetDelay != 1500*time.Millisecond {
		t.Errorf("Expected asset delay 1.5s, got %s", config.RateLimit.AssetDelay)
	}
	if len(config.Archive.SocialEndpoints) != 2 {
		t.Errorf("Expected 2 social endpoints, got %v", config.Archive.SocialEndpoints)
	}
	// Untouched keys keep their defaults
	if config.GitHub.PerPage != 100 {
		t.Errorf("Expected per_page default to survive, got %d", config.GitHub.PerPage)
	}
}

func TestLoadPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `output:
  base_directory: /from/file
logging:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("GHARCHIVER_OUTPUT_DIR", "/from/env")

	config, err := Load(configPath, map[string]interface{}{
		"log-level": "debug",
		"releases":  false,
	})
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Output.BaseDirectory != "/from/env" {
		t.Errorf("Expected env to override file, got %s", config.Output.BaseDirectory)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected flag to override file, got %s", config.Logging.Level)
	}
	if config.Archive.Releases {
		t.Error("Expected releases flag to disable releases")
	}
}

func TestMaskedHidesToken(t *testing.T) {
	config := DefaultConfig()
	config.GitHub.Token = "ghp_secret"

	masked := config.Masked()
	if masked.GitHub.Token != "****" {
		t.Errorf("Expected masked token, got %s", masked.GitHub.Token)
	}
	if config.GitHub.Token != "ghp_secret" {
		t.Error("Masking must not modify the original config")
	}
}
