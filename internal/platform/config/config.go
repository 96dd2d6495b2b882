package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "studyo"

const (
	EnvConfigPath = "STUDYO_CONFIG"
	EnvAPIURL     = "STUDYO_API_URL"
	EnvToken      = "STUDYO_TOKEN"
)

// Duration decodes TOML strings such as "1s" or "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	APIBaseURL    string   `toml:"api_base_url"`
	Token         string   `toml:"token"`
	TokenScheme   string   `toml:"token_scheme"`
	DataDir       string   `toml:"data_dir"`
	Timezone      string   `toml:"timezone"`
	TickInterval  Duration `toml:"tick_interval"`
	CommitTimeout Duration `toml:"commit_timeout"`
	AutoStartNext bool     `toml:"auto_start_next"`
	LogLevel      string   `toml:"log_level"`

	Path   string `toml:"-"`
	DBPath string `toml:"-"`
}

func Default() Config {
	return Config{
		APIBaseURL:    "http://127.0.0.1:8000/api",
		TokenScheme:   "Token",
		DataDir:       defaultDataDir(),
		TickInterval:  Duration{time.Second},
		CommitTimeout: Duration{15 * time.Second},
		LogLevel:      "info",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/studyo/config.toml or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appName, "config.toml")
	}
	return filepath.Join(dir, appName, "config.toml")
}

// Load resolves the config path (flag, then env, then default), decodes it
// when present and applies environment overrides. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return Config{}, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("stat config %s: %w", path, err)
	}
	cfg.Path = path

	applyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	cfg.DBPath = filepath.Join(cfg.DataDir, appName+".db")
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if cfg.TickInterval.Duration <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if cfg.CommitTimeout.Duration <= 0 {
		return fmt.Errorf("commit_timeout must be positive")
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug|info|warn|error, got %q", cfg.LogLevel)
	}
	return nil
}

// Location returns the timezone used to bucket sessions into days.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Write persists cfg as TOML, creating the parent directory.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		cfg.Token = v
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(dir, appName)
}
