package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ConfigFileName = "theme-sync.yaml"

// DefaultRateLimitDelayMS is the pause between queued API calls when the
// config does not set one. Shopify allows roughly 2 calls/second.
const DefaultRateLimitDelayMS = 500

type Config struct {
	ProjectName    string        `yaml:"project_name"`
	Store          string        `yaml:"store"`
	APIKey         string        `yaml:"api_key"`
	Password       string        `yaml:"password"`
	Port           int           `yaml:"port,omitempty"`
	ThemeID        string        `yaml:"theme_id,omitempty"`
	BasePath       string        `yaml:"base_path,omitempty"`
	RateLimitMS    int           `yaml:"rate_limit_delay,omitempty"`
	TimeoutSeconds int           `yaml:"timeout,omitempty"`
	Notifications  Notifications `yaml:"notifications,omitempty"`
}

type Notifications struct {
	Console *bool `yaml:"console,omitempty"`
	Desktop bool  `yaml:"desktop,omitempty"`
}

// ConsoleEnabled defaults to true when the notifications section is absent.
func (n Notifications) ConsoleEnabled() bool {
	return n.Console == nil || *n.Console
}

func (n Notifications) DesktopEnabled() bool {
	return n.Desktop
}

// RateLimitDelay returns the pause the task queue observes between API calls.
func (c *Config) RateLimitDelay() time.Duration {
	if c.RateLimitMS <= 0 {
		return DefaultRateLimitDelayMS * time.Millisecond
	}
	return time.Duration(c.RateLimitMS) * time.Millisecond
}

// Timeout returns the whole-request timeout handed to the HTTP client.
// Zero means the client's default (no timeout).
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AbsBasePath resolves the configured theme directory, defaulting to the
// current working directory.
func (c *Config) AbsBasePath() (string, error) {
	base := c.BasePath
	if base == "" {
		base = "."
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("error resolving base path: %v", err)
	}
	return abs, nil
}

// ValidateConfig validates the configuration for required fields and file paths
func ValidateConfig(cfg *Config) error {
	var validationErrors []string

	if strings.TrimSpace(cfg.Store) == "" {
		validationErrors = append(validationErrors, "store cannot be empty")
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		validationErrors = append(validationErrors, "api_key cannot be empty")
	}

	if strings.TrimSpace(cfg.Password) == "" {
		validationErrors = append(validationErrors, "password cannot be empty")
	}

	if cfg.Port != 0 && (cfg.Port < 1 || cfg.Port > 65535) {
		validationErrors = append(validationErrors, "port must be a valid number between 1-65535")
	}

	if strings.TrimSpace(cfg.ThemeID) != "" {
		if _, err := strconv.ParseInt(cfg.ThemeID, 10, 64); err != nil {
			validationErrors = append(validationErrors, "theme_id must be numeric")
		}
	}

	if cfg.RateLimitMS < 0 {
		validationErrors = append(validationErrors, "rate_limit_delay cannot be negative")
	}

	if cfg.TimeoutSeconds < 0 {
		validationErrors = append(validationErrors, "timeout cannot be negative")
	}

	if strings.TrimSpace(cfg.BasePath) != "" {
		if _, err := os.Stat(cfg.BasePath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("base path does not exist: %s", cfg.BasePath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// envRef matches the ${VAR} interpolation form. Bare $VAR is left alone so
// literal dollar signs in values (passwords especially) survive loading.
var envRef = regexp.MustCompile(`\$\{(\w+)\}`)

// LoadAndValidateConfig loads theme-sync.yaml from the working directory,
// interpolates ${VAR} references from the environment (a .env file is loaded
// first; already-set OS variables take priority) and validates the result.
func LoadAndValidateConfig() (*Config, error) {
	if !ConfigExists() {
		return nil, errors.New("theme-sync.yaml not found. Please run 'theme-sync init' first")
	}

	// godotenv.Load never overrides variables already present in the OS env
	_ = godotenv.Load()

	data, err := os.ReadFile(ConfigFileName)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	rendered := envRef.ReplaceAllStringFunc(string(data), func(ref string) string {
		if v, ok := os.LookupEnv(ref[2 : len(ref)-1]); ok {
			return v
		}
		// keep unresolved references visible instead of erasing them
		return ref
	})

	var cfg Config
	err = yaml.Unmarshal([]byte(rendered), &cfg)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	err = ValidateConfig(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func ConfigExists() bool {
	_, err := os.Stat(ConfigFileName)
	return !os.IsNotExist(err)
}

func GetConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ConfigFileName)
}
