package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"rubox/internal/pipeline"
)

const (
	configName = "config"
	configType = "yaml"
	envPrefix  = "RUBOX"
)

type Config struct {
	APIKey              string        `mapstructure:"api_key"`
	LocalRoot           string        `mapstructure:"local_root"`
	RemoteRoot          string        `mapstructure:"remote_root"`
	SyncIntervalMinutes int           `mapstructure:"sync_interval_minutes"`
	LogPath             string        `mapstructure:"log_path"`
	APIBaseURL          string        `mapstructure:"api_base_url"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	DBPath              string        `mapstructure:"db_path"`
	DaemonPort          int           `mapstructure:"daemon_port"`
	IgnoreList          []string      `mapstructure:"ignore_list"`
	WatchLocal          bool          `mapstructure:"watch_local"`
}

var Default = Config{
	SyncIntervalMinutes: 5,
	APIBaseURL:          "https://cloud-api.yandex.net/v1/disk",
	RequestTimeout:      60 * time.Second,
	DaemonPort:          9101,
	IgnoreList:          []string{"*.tmp", "*.swp", "~$*"},
}

// Keys that may be changed with Set.
var Keys = []string{
	"api_key",
	"local_root",
	"remote_root",
	"sync_interval_minutes",
	"log_path",
	"api_base_url",
	"request_timeout",
	"db_path",
	"daemon_port",
	"ignore_list",
	"watch_local",
}

// Names used by the first generation of the tool, kept so existing .env
// files keep working.
var legacyEnv = map[string]string{
	"api_key":               "API_KEY",
	"local_root":            "DIR_SKAN",
	"remote_root":           "DISK_DIR",
	"sync_interval_minutes": "INTERVAL_SYNCHRONISATION_MINUTES",
	"log_path":              "LOG_FILE_PATH",
}

type LoadOptions struct {
	// Dir holds config.yaml and the default database. Empty means ~/.rubox.
	Dir string
	// EnvFile is loaded into the environment before reading. Missing files are ignored.
	EnvFile string
}

func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}

	return filepath.Join(home, ".rubox"), nil
}

func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
	}

	v, dir, err := newViper(opts.Dir)
	if err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if notFound := (viper.ConfigFileNotFoundError{}); !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dir, "rubox.db")
	}

	return &cfg, nil
}

// Set persists a single key into config.yaml, creating the file if needed.
func Set(dir, key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown config key: %s", key)
	}

	v, dir, err := newViper(dir)
	if err != nil {
		return err
	}

	if err := v.ReadInConfig(); err != nil {
		if notFound := (viper.ConfigFileNotFoundError{}); !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if key == "ignore_list" {
		v.Set(key, strings.Split(value, ","))
	} else {
		v.Set(key, value)
	}

	path := filepath.Join(dir, configName+"."+configType)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func newViper(dir string) (*viper.Viper, string, error) {
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return nil, "", err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetDefault("sync_interval_minutes", Default.SyncIntervalMinutes)
	v.SetDefault("api_base_url", Default.APIBaseURL)
	v.SetDefault("request_timeout", Default.RequestTimeout)
	v.SetDefault("daemon_port", Default.DaemonPort)
	v.SetDefault("ignore_list", Default.IgnoreList)
	v.SetDefault("watch_local", Default.WatchLocal)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for _, key := range Keys {
		names := []string{key, envPrefix + "_" + strings.ToUpper(key)}
		if legacy, ok := legacyEnv[key]; ok {
			names = append(names, legacy)
		}
		if err := v.BindEnv(names...); err != nil {
			return nil, "", fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	return v, dir, nil
}

func (c *Config) Validate() error {
	if c.LocalRoot == "" {
		return errors.New("local_root is not set")
	}
	if c.RemoteRoot == "" {
		return errors.New("remote_root is not set")
	}
	if c.SyncIntervalMinutes <= 0 {
		return fmt.Errorf("sync_interval_minutes must be positive, got %d", c.SyncIntervalMinutes)
	}
	if c.APIBaseURL == "" {
		return errors.New("api_base_url is not set")
	}
	if err := pipeline.ValidatePatterns(c.IgnoreList); err != nil {
		return err
	}

	return nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.SyncIntervalMinutes) * time.Minute
}
