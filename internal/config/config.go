package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	AdminAPIKey string `yaml:"admin_api_key"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // status cache TTL
}

type StorageConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
}

type UploadConfig struct {
	MaxBytes      int64         `yaml:"max_bytes"`
	RetentionDays int           `yaml:"retention_days"`
	RateLimit     int           `yaml:"rate_limit"` // uploads per owner per window
	RateWindow    time.Duration `yaml:"rate_window"`
}

type WorkerConfig struct {
	Count             int           `yaml:"count"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	ConversionTimeout time.Duration `yaml:"conversion_timeout"`
}

type SweepConfig struct {
	Interval        time.Duration `yaml:"interval"`
	StaleProcessing time.Duration `yaml:"stale_processing"` // processing older than this is failed, then reclaimed
}

// OCRConfig controls the fixed conversion option set. Deskew, auto-rotate,
// artifact cleaning and skip-text are on by default; the disable flags exist
// so a zero-value YAML block keeps the defaults.
type OCRConfig struct {
	Binary      string `yaml:"binary"`
	Language    string `yaml:"language"`
	NoDeskew    bool   `yaml:"no_deskew"`
	NoRotate    bool   `yaml:"no_rotate"`
	NoClean     bool   `yaml:"no_clean"`
	OutputType  string `yaml:"output_type"`   // pdfa for archival output
	OCRAllPages bool   `yaml:"ocr_all_pages"` // re-OCR pages that already contain text
}

func (c OCRConfig) Deskew() bool   { return !c.NoDeskew }
func (c OCRConfig) Rotate() bool   { return !c.NoRotate }
func (c OCRConfig) Clean() bool    { return !c.NoClean }
func (c OCRConfig) SkipText() bool { return !c.OCRAllPages }

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Upload   UploadConfig   `yaml:"upload"`
	Worker   WorkerConfig   `yaml:"worker"`
	Sweep    SweepConfig    `yaml:"sweep"`
	OCR      OCRConfig      `yaml:"ocr"`

	Runtime RuntimeConfig `yaml:"-"`
}

// Retention returns the retention window applied to new jobs.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Upload.RetentionDays) * 24 * time.Hour
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
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 30 * time.Second
	}
	if c.Storage.InputDir == "" {
		c.Storage.InputDir = "data/ocr-in"
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "data/ocr-out"
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = 50 * 1024 * 1024
	}
	if c.Upload.RetentionDays <= 0 {
		c.Upload.RetentionDays = 7
	}
	if c.Upload.RateLimit <= 0 {
		c.Upload.RateLimit = 30
	}
	if c.Upload.RateWindow <= 0 {
		c.Upload.RateWindow = time.Hour
	}
	if c.Worker.Count <= 0 {
		c.Worker.Count = 4
	}
	if c.Worker.PollInterval <= 0 {
		c.Worker.PollInterval = 500 * time.Millisecond
	}
	if c.Worker.ConversionTimeout <= 0 {
		c.Worker.ConversionTimeout = 10 * time.Minute
	}
	if c.Sweep.Interval <= 0 {
		c.Sweep.Interval = time.Hour
	}
	if c.Sweep.StaleProcessing <= 0 {
		c.Sweep.StaleProcessing = 6 * time.Hour
	}
	if c.OCR.Binary == "" {
		c.OCR.Binary = "ocrmypdf"
	}
	if c.OCR.Language == "" {
		c.OCR.Language = "eng"
	}
	if c.OCR.OutputType == "" {
		c.OCR.OutputType = "pdfa"
	}
}
