package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const configDir = ".regchat"
const configFile = "config.json"

const (
	DefaultServer  = "http://localhost:8080"
	DefaultTimeout = 5 * time.Minute
	ThemeDark      = "dark"
	ThemeLight     = "light"
)

// Environment overrides, applied by Effective on top of the saved file.
const (
	EnvServer   = "REGCHAT_SERVER"
	EnvFilesURL = "REGCHAT_FILES_URL"
	EnvTheme    = "REGCHAT_THEME"
)

type Config struct {
	Server         string `json:"server"`
	FilesURL       string `json:"files_url,omitempty"`
	LastThread     string `json:"last_thread,omitempty"`
	Theme          string `json:"theme,omitempty"`
	SidebarHidden  bool   `json:"sidebar_hidden,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	Profile        string `json:"-"`
}

func configPath(profile string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	filename := configFile
	if profile != "" {
		filename = fmt.Sprintf("config-%s.json", profile)
	}
	return filepath.Join(dir, filename), nil
}

// Dir returns ~/.regchat. The log file lives next to the profiles.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot find home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

func Load(profile string) (*Config, error) {
	path, err := configPath(profile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Profile: profile}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Profile = profile
	return &cfg, nil
}

func (c *Config) Save() error {
	path, err := configPath(c.Profile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Effective returns a copy with environment overrides and defaults filled
// in. The receiver is left untouched so Save never persists overrides.
func (c *Config) Effective() Config {
	out := *c
	if v := strings.TrimSpace(os.Getenv(EnvServer)); v != "" {
		out.Server = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFilesURL)); v != "" {
		out.FilesURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		out.Theme = v
	}

	if out.Server == "" {
		out.Server = DefaultServer
	}
	out.Server = strings.TrimRight(out.Server, "/")
	if out.FilesURL == "" {
		out.FilesURL = out.Server + "/files"
	}
	out.FilesURL = strings.TrimRight(out.FilesURL, "/")
	if out.Theme != ThemeLight {
		out.Theme = ThemeDark
	}
	return out
}

// Timeout is the HTTP client timeout. Zero or negative means the default.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Set assigns a config key from its string form, as used by `regchat set`.
func (c *Config) Set(key, value string) error {
	switch key {
	case "server":
		c.Server = value
	case "files":
		c.FilesURL = value
	case "thread":
		c.LastThread = value
	case "theme":
		if value != ThemeDark && value != ThemeLight {
			return fmt.Errorf("invalid theme: %s (valid: dark, light)", value)
		}
		c.Theme = value
	case "timeout":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid timeout: %s (seconds)", value)
		}
		c.TimeoutSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s (valid: server, files, thread, theme, timeout)", key)
	}
	return nil
}

func (c *Config) profileFlag() string {
	if c.Profile == "" {
		return ""
	}
	return " --profile " + c.Profile
}

func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server not set. Run: regchat%s set server <url>", c.profileFlag())
	}
	if !strings.HasPrefix(c.Server, "http://") && !strings.HasPrefix(c.Server, "https://") {
		return fmt.Errorf("invalid server URL %q. Run: regchat%s set server <url>", c.Server, c.profileFlag())
	}
	return nil
}

func (c *Config) ValidateThread() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.LastThread == "" {
		return fmt.Errorf("no thread selected. Run: regchat%s new <title> or regchat%s set thread <id>", c.profileFlag(), c.profileFlag())
	}
	return nil
}

func ListProfiles() ([]string, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config directory: %w", err)
	}
	var profiles []string
	for _, e := range entries {
		name := e.Name()
		if name == configFile {
			profiles = append(profiles, "default")
			continue
		}
		if strings.HasPrefix(name, "config-") && strings.HasSuffix(name, ".json") {
			profiles = append(profiles, strings.TrimSuffix(strings.TrimPrefix(name, "config-"), ".json"))
		}
	}
	return profiles, nil
}

func ProfileName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}
