package config

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidAPIURL   = errors.New("github api_url must not be empty")
	ErrNegativeTimeout = errors.New("github timeout must not be negative")
)

const (
	DefaultAPIURL  = "https://api.github.com"
	DefaultTimeout = 30 * time.Second
)

// envVarPattern matches ${VAR_NAME} syntax for environment variable substitution
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Config represents the per-user configuration
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Git    GitConfig    `yaml:"git"`
	Log    LogConfig    `yaml:"log"`
}

// GitHubConfig holds GitHub API settings
type GitHubConfig struct {
	APIURL  string        `yaml:"api_url"`
	Token   string        `yaml:"token,omitempty"` // Personal access token, ${VAR} is expanded
	Timeout time.Duration `yaml:"timeout"`         // 0 disables the client timeout
}

// GitConfig holds the optional commit author
type GitConfig struct {
	User  string `yaml:"user,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// LogConfig holds logging settings
type LogConfig struct {
	File bool `yaml:"file"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIURL:  DefaultAPIURL,
			Timeout: DefaultTimeout,
		},
	}
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/nixbump/config.yaml (XDG standard - priority)
// 2. ~/.nixbump/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "nixbump", "config.yaml"),
		filepath.Join(home, ".nixbump", "config.yaml"),
	}, nil
}

// FindConfigPath returns the first existing config file path
// Returns the default path if no config file exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return paths[0], nil
}

// Load reads configuration from the first available config file
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadOrCreate is Load, but writes the defaults out when no config file exists yet
func LoadOrCreate() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadOrCreateFrom(configPath)
}

// LoadFrom reads configuration from a specific file path.
// A missing file yields the defaults and nothing is written.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrCreateFrom reads configuration from path.
// A missing file yields the defaults, which are written out on a best-effort basis.
func LoadOrCreateFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		_ = cfg.SaveTo(path)
		return cfg, nil
	}
	return LoadFrom(path)
}

// SaveTo writes configuration to a specific file path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks field values that cannot be defaulted
func (c *Config) Validate() error {
	if c.GitHub.APIURL == "" {
		return ErrInvalidAPIURL
	}
	if c.GitHub.Timeout < 0 {
		return ErrNegativeTimeout
	}
	return nil
}

// GitHubToken returns the expanded token, falling back to $GITHUB_TOKEN
func (c *Config) GitHubToken() string {
	if token := ExpandEnvVars(c.GitHub.Token); token != "" {
		return token
	}
	return os.Getenv("GITHUB_TOKEN")
}

// ExpandEnvVars replaces ${VAR} references with their environment values
func ExpandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
