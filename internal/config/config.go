package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hubpilot/hubpilot/internal/workspace"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the settings schema version written by this build.
// Files with a lower version are migrated in place on load.
const CurrentVersion = 1

// ModelTier represents the model capability level
type ModelTier string

const (
	TierFast   ModelTier = "fast"   // Claude Haiku
	TierSmart  ModelTier = "smart"  // Claude Sonnet
	TierGenius ModelTier = "genius" // Claude Opus
)

// RateLimitConfig holds reasoning-engine rate limiting configuration
type RateLimitConfig struct {
	MaxRetries         int  `yaml:"max_retries"`          // SDK-level retries on 429
	TokensPerMinute    int  `yaml:"tokens_per_minute"`    // Proactive budget (tokens/minute)
	EnableRateLimiting bool `yaml:"enable_rate_limiting"` // Enable the token bucket
}

// ScanConfig holds account-scan pacing configuration
type ScanConfig struct {
	PageSize     int           `yaml:"page_size"`     // Repositories per page
	RequestDelay time.Duration `yaml:"request_delay"` // Minimum delay between pages
}

// Config holds the application configuration
type Config struct {
	Version     int              `yaml:"version"`
	DefaultTier ModelTier        `yaml:"default_tier"`
	MaxTokens   int              `yaml:"max_tokens"`
	Temperature float64          `yaml:"temperature"`
	Disclosure  workspace.Policy `yaml:"disclosure"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit"`
	Scan        ScanConfig       `yaml:"scan"`

	// Credentials come from the environment (or CLI overrides) only and are
	// never written to the settings file.
	AnthropicKey string `yaml:"-"`
	GitHubToken  string `yaml:"-"`

	// Internal: where config was loaded from
	configPath string
}

// LoadOptions allows callers to override pieces of the environment.
type LoadOptions struct {
	AnthropicKeyOverride string
	GitHubTokenOverride  string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version:     CurrentVersion,
		DefaultTier: TierSmart,
		MaxTokens:   8192,
		Temperature: 0.7,
		Disclosure:  workspace.DefaultPolicy(),
		RateLimit: RateLimitConfig{
			MaxRetries:         5,
			TokensPerMinute:    30000,
			EnableRateLimiting: true,
		},
		Scan: ScanConfig{
			PageSize:     50,
			RequestDelay: 500 * time.Millisecond,
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions loads configuration, applying the given overrides.
// Missing credentials are not an error here: the orchestrator reports a
// missing engine key as a system message on first use instead.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	cfg := DefaultConfig()

	configPaths := getConfigPaths()
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			// A file without a version key must read as version 0, not as
			// the current default, or migration never fires for it.
			cfg.Version = 0
			if err := cfg.loadFromFile(path); err != nil {
				return nil, fmt.Errorf("error loading config from %s: %w", path, err)
			}
			cfg.configPath = path
			break
		}
	}

	// If no config found, create default
	if cfg.configPath == "" {
		if err := cfg.createDefault(); err != nil {
			// Non-fatal: just use defaults
			fmt.Fprintf(os.Stderr, "Warning: could not create default config: %v\n", err)
		}
	}

	// Migrate older settings files forward
	if cfg.Version < CurrentVersion {
		cfg.migrate()
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save migrated config: %v\n", err)
		}
	}

	cfg.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	if opts.AnthropicKeyOverride != "" {
		cfg.AnthropicKey = opts.AnthropicKeyOverride
	}

	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	if opts.GitHubTokenOverride != "" {
		cfg.GitHubToken = opts.GitHubTokenOverride
	}

	return cfg, nil
}

// migrate fills in fields that older schema versions did not carry.
// Version 0 files predate the version tag and the disclosure block.
func (c *Config) migrate() {
	if c.Version < 1 {
		defaults := DefaultConfig()
		if c.Scan.PageSize == 0 {
			c.Scan = defaults.Scan
		}
		if !c.Disclosure.IncludeRepoMap && !c.Disclosure.IncludeFileContent && !c.Disclosure.IncludeSelection {
			c.Disclosure = defaults.Disclosure
		}
	}
	c.Version = CurrentVersion
}

// getConfigPaths returns config file paths in priority order
func getConfigPaths() []string {
	paths := []string{
		"hubpilot.yaml",
		".hubpilot/config.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "hubpilot", "config.yaml"))
	}

	return paths
}

// loadFromFile loads config from a YAML file
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// createDefault creates a default config file
func (c *Config) createDefault() error {
	dir := ".hubpilot"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	c.configPath = filepath.Join(dir, "config.yaml")
	return c.Save()
}

// Save writes the current settings back to the file they were loaded from.
// Used to persist disclosure-policy and model-tier changes across sessions.
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config path to save to")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	content := "# hubpilot configuration\n\n" + string(data)
	return os.WriteFile(c.configPath, []byte(content), 0644)
}

// GetModel returns the Anthropic model ID for a tier
func (c *Config) GetModel(tier ModelTier) string {
	switch tier {
	case TierFast:
		return "claude-haiku-4-5-20251015"
	case TierSmart:
		return "claude-sonnet-4-5-20250929"
	case TierGenius:
		return "claude-opus-4-5-20251101"
	default:
		return "claude-sonnet-4-5-20250929"
	}
}

// GetDefaultModel returns the model ID for the configured default tier
func (c *Config) GetDefaultModel() string {
	return c.GetModel(c.DefaultTier)
}
