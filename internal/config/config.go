// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML scalars like "30s" or "6h" (or raw nanosecond
// integers) into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token string `yaml:"token"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string   `yaml:"url"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
}

// ElementsConfig controls the orbital elements (TLE) source.
type ElementsConfig struct {
	SourceURL       string   `yaml:"source_url"`
	NoradID         int      `yaml:"norad_id"`
	RefreshInterval Duration `yaml:"refresh_interval"`
	MaxAge          Duration `yaml:"max_age"`
	CacheDir        string   `yaml:"cache_dir"`
	CacheMaxFiles   int      `yaml:"cache_max_files"`
}

// MonitorConfig controls the last-heard activity poller.
type MonitorConfig struct {
	FeedURL       string   `yaml:"feed_url"`
	PollInterval  Duration `yaml:"poll_interval"`
	InactivityGap Duration `yaml:"inactivity_gap"`
}

// PredictorConfig controls the pass search.
type PredictorConfig struct {
	CoarseStep       Duration `yaml:"coarse_step"`
	FineStep         Duration `yaml:"fine_step"`
	MinElevation     float64  `yaml:"min_elevation"`
	MaxPasses        int      `yaml:"max_passes"`
	DefaultThreshold float64  `yaml:"default_threshold_hours"`
	EvalWorkers      int      `yaml:"eval_workers"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Elements  ElementsConfig  `yaml:"elements"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Predictor PredictorConfig `yaml:"predictor"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	// Minimal validation
	if cfg.Bot.Token == "" && !dev {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Predictor.MinElevation < 0 || cfg.Predictor.MinElevation >= 90 {
		return nil, errors.New("predictor.min_elevation must be in [0, 90)")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8080
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = Duration(time.Hour)
	}

	if cfg.Elements.SourceURL == "" {
		cfg.Elements.SourceURL = "https://celestrak.org/NORAD/elements/gp.php?GROUP=stations&FORMAT=tle"
	}
	if cfg.Elements.NoradID == 0 {
		cfg.Elements.NoradID = 25544 // ISS (ZARYA)
	}
	if cfg.Elements.RefreshInterval <= 0 {
		cfg.Elements.RefreshInterval = Duration(6 * time.Hour)
	}
	if cfg.Elements.MaxAge <= 0 {
		cfg.Elements.MaxAge = Duration(72 * time.Hour)
	}
	if cfg.Elements.CacheDir == "" {
		cfg.Elements.CacheDir = "tle-cache"
	}
	if cfg.Elements.CacheMaxFiles <= 0 {
		cfg.Elements.CacheMaxFiles = 5
	}

	if cfg.Monitor.FeedURL == "" {
		cfg.Monitor.FeedURL = "http://ariss.net/lastheard.csv"
	}
	if cfg.Monitor.PollInterval <= 0 {
		cfg.Monitor.PollInterval = Duration(time.Minute)
	}
	if cfg.Monitor.InactivityGap <= 0 {
		cfg.Monitor.InactivityGap = Duration(6 * time.Hour)
	}

	if cfg.Predictor.CoarseStep <= 0 {
		cfg.Predictor.CoarseStep = Duration(30 * time.Second)
	}
	if cfg.Predictor.FineStep <= 0 {
		cfg.Predictor.FineStep = Duration(5 * time.Second)
	}
	if cfg.Predictor.MaxPasses <= 0 {
		cfg.Predictor.MaxPasses = 20
	}
	if cfg.Predictor.DefaultThreshold <= 0 {
		cfg.Predictor.DefaultThreshold = 6
	}
	if cfg.Predictor.EvalWorkers <= 0 {
		cfg.Predictor.EvalWorkers = 8
	}
}
