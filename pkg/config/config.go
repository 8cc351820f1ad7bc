package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSocialEndpoints are the flat per-user collections archived as <name>.json
var DefaultSocialEndpoints = []string{
	"followers",
	"following",
	"orgs",
	"events",
	"received_events",
	"starred",
	"subscriptions",
}

// Config holds all configuration options for the archiver
type Config struct {
	GitHub    GitHubConfig    `yaml:"github" json:"github"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry" json:"retry"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Archive   ArchiveConfig   `yaml:"archive" json:"archive"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// GitHubConfig holds API access settings
type GitHubConfig struct {
	APIURL    string        `yaml:"api_url" json:"api_url"`
	Token     string        `yaml:"token" json:"token"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	PerPage   int           `yaml:"per_page" json:"per_page"`
}

// RateLimitConfig holds request pacing
type RateLimitConfig struct {
	// AssetDelay is the fixed pause enforced between binary downloads
	AssetDelay time.Duration `yaml:"asset_delay" json:"asset_delay"`
	// RequestsPerMinute paces API calls; 0 disables pacing
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RetryConfig controls retries of binary downloads. Paginated API pages are never retried.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// ArchiveConfig selects which resource families are archived
type ArchiveConfig struct {
	Avatar          bool     `yaml:"avatar" json:"avatar"`
	SocialEndpoints []string `yaml:"social_endpoints" json:"social_endpoints"`
	Repos           bool     `yaml:"repos" json:"repos"`
	Comments        bool     `yaml:"comments" json:"comments"`
	Reactions       bool     `yaml:"reactions" json:"reactions"`
	Gists           bool     `yaml:"gists" json:"gists"`
	Releases        bool     `yaml:"releases" json:"releases"`
	ReleaseAssets   bool     `yaml:"release_assets" json:"release_assets"`
	SourceArchives  bool     `yaml:"source_archives" json:"source_archives"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIURL:    "https://api.github.com/",
			UserAgent: "gharchiver/1.0",
			Timeout:   30 * time.Second,
			PerPage:   100,
		},
		RateLimit: RateLimitConfig{
			AssetDelay:        time.Second,
			RequestsPerMinute: 0,
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
		},
		Output: OutputConfig{
			BaseDirectory: ".",
		},
		Archive: ArchiveConfig{
			Avatar:          true,
			SocialEndpoints: append([]string(nil), DefaultSocialEndpoints...),
			Repos:           true,
			Comments:        true,
			Reactions:       true,
			Gists:           true,
			Releases:        true,
			ReleaseAssets:   true,
			SourceArchives:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	// GITHUB_TOKEN is the conventional name; the prefixed one wins when both are set
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		c.GitHub.Token = token
	}
	if token := os.Getenv("GHARCHIVER_TOKEN"); token != "" {
		c.GitHub.Token = token
	}
	if apiURL := os.Getenv("GHARCHIVER_API_URL"); apiURL != "" {
		c.GitHub.APIURL = apiURL
	}
	if userAgent := os.Getenv("GHARCHIVER_USER_AGENT"); userAgent != "" {
		c.GitHub.UserAgent = userAgent
	}
	if outputDir := os.Getenv("GHARCHIVER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if delay := os.Getenv("GHARCHIVER_ASSET_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			errs = append(errs, fmt.Errorf("GHARCHIVER_ASSET_DELAY: %w", err))
		} else {
			c.RateLimit.AssetDelay = d
		}
	}
	if rpm := os.Getenv("GHARCHIVER_REQUESTS_PER_MINUTE"); rpm != "" {
		val, err := strconv.Atoi(rpm)
		if err != nil {
			errs = append(errs, fmt.Errorf("GHARCHIVER_REQUESTS_PER_MINUTE: %w", err))
		} else {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if logLevel := os.Getenv("GHARCHIVER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("GHARCHIVER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home, _ := os.UserHomeDir()
	locations := []string{
		".gharchiver.yaml",
		".gharchiver.yml",
	}
	if home != "" {
		locations = append(locations,
			filepath.Join(home, ".config", "gharchiver", "config.yaml"),
			filepath.Join(home, ".config", "gharchiver", "config.yml"),
			filepath.Join(home, ".gharchiver.yaml"),
			filepath.Join(home, ".gharchiver.yml"),
		)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.GitHub.APIURL)
	if c.GitHub.APIURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("github api_url must be an absolute URL"))
	}
	if c.GitHub.Timeout <= 0 {
		errs = append(errs, errors.New("github timeout must be positive"))
	}
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		errs = append(errs, errors.New("github per_page must be between 1 and 100"))
	}

	if c.RateLimit.AssetDelay < 0 {
		errs = append(errs, errors.New("asset delay cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max_attempts must be at least 1"))
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		errs = append(errs, errors.New("retry delays cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	known := make(map[string]bool, len(DefaultSocialEndpoints))
	for _, name := range DefaultSocialEndpoints {
		known[name] = true
	}
	for _, name := range c.Archive.SocialEndpoints {
		if !known[name] {
			errs = append(errs, fmt.Errorf("unknown social endpoint %q", name))
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Masked returns a copy safe for display
func (c *Config) Masked() *Config {
	masked := *c
	masked.Archive.SocialEndpoints = append([]string(nil), c.Archive.SocialEndpoints...)
	if masked.GitHub.Token != "" {
		masked.GitHub.Token = "****"
	}
	return &masked
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if apiURL, ok := flags["api-url"].(string); ok && apiURL != "" {
		c.GitHub.APIURL = apiURL
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if delay, ok := flags["asset-delay"].(time.Duration); ok {
		c.RateLimit.AssetDelay = delay
	}
	if attempts, ok := flags["max-retries"].(int); ok && attempts > 0 {
		c.Retry.MaxAttempts = attempts
	}
	if v, ok := flags["avatar"].(bool); ok {
		c.Archive.Avatar = v
	}
	if v, ok := flags["repos"].(bool); ok {
		c.Archive.Repos = v
	}
	if v, ok := flags["comments"].(bool); ok {
		c.Archive.Comments = v
	}
	if v, ok := flags["reactions"].(bool); ok {
		c.Archive.Reactions = v
	}
	if v, ok := flags["gists"].(bool); ok {
		c.Archive.Gists = v
	}
	if v, ok := flags["releases"].(bool); ok {
		c.Archive.Releases = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".gharchiver.env"))
	}

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
