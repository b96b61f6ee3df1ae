// Package config loads runtime settings from defaults, an optional YAML file,
// a .env file and NEWSLET_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "NEWSLET"

// Config is the fully resolved application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Scrape     ScrapeConfig     `mapstructure:"scrape"`
	Inference  InferenceConfig  `mapstructure:"inference"`
	Newsletter NewsletterConfig `mapstructure:"newsletter"`
	// PublishersFile optionally points at a YAML/JSON list of event sinks.
	PublishersFile string `mapstructure:"publishers_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StorageConfig locates every file the service writes. Empty paths are
// derived from DataDir.
type StorageConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	DBPath        string `mapstructure:"db_path"`
	HistoryPath   string `mapstructure:"history_path"`
	NewsletterDir string `mapstructure:"newsletter_dir"`
	SnapshotDir   string `mapstructure:"snapshot_dir"`
}

type ScrapeConfig struct {
	SourcesFile    string        `mapstructure:"sources_file"`
	Sources        []string      `mapstructure:"sources"`
	DaysBack       int           `mapstructure:"days_back"`
	SourceDelay    time.Duration `mapstructure:"source_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	FetchContent   bool          `mapstructure:"fetch_content"`
	ContentWorkers int           `mapstructure:"content_workers"`
}

// InferenceConfig describes the hosted model capability. When Enabled is
// false or the endpoint is unreachable at startup the keyword analyzers are used.
type InferenceConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	BaseURL         string        `mapstructure:"base_url"`
	Token           string        `mapstructure:"token"`
	Timeout         time.Duration `mapstructure:"timeout"`
	SentimentModel  string        `mapstructure:"sentiment_model"`
	ClassifierModel string        `mapstructure:"classifier_model"`
	SummaryModel    string        `mapstructure:"summary_model"`
}

type NewsletterConfig struct {
	MinImportance float64 `mapstructure:"min_importance"`
	MaxArticles   int     `mapstructure:"max_articles"`
	Format        string  `mapstructure:"format"`
}

// DefaultDataDir is where files live when no data_dir is configured.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "newslet")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("storage.data_dir", DefaultDataDir())
	v.SetDefault("storage.db_path", "")
	v.SetDefault("storage.history_path", "")
	v.SetDefault("storage.newsletter_dir", "")
	v.SetDefault("storage.snapshot_dir", "")

	v.SetDefault("scrape.sources_file", "")
	v.SetDefault("scrape.sources", []string{"yahoo", "reuters", "marketwatch"})
	v.SetDefault("scrape.days_back", 7)
	v.SetDefault("scrape.source_delay", time.Second)
	v.SetDefault("scrape.request_timeout", 10*time.Second)
	v.SetDefault("scrape.fetch_content", false)
	v.SetDefault("scrape.content_workers", 4)

	v.SetDefault("inference.enabled", false)
	v.SetDefault("inference.base_url", "https://api-inference.huggingface.co")
	v.SetDefault("inference.token", "")
	v.SetDefault("inference.timeout", 30*time.Second)
	v.SetDefault("inference.sentiment_model", "ProsusAI/finbert")
	v.SetDefault("inference.classifier_model", "facebook/bart-large-mnli")
	v.SetDefault("inference.summary_model", "facebook/bart-large-cnn")

	v.SetDefault("newsletter.min_importance", 0.5)
	v.SetDefault("newsletter.max_articles", 20)
	v.SetDefault("newsletter.format", "html")

	v.SetDefault("publishers_file", "")
}

// Load resolves the configuration. path may be empty; a missing .env is ignored.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.resolvePaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolvePaths() {
	s := &c.Storage
	s.DataDir = strings.TrimSpace(s.DataDir)
	if s.DataDir == "" {
		s.DataDir = DefaultDataDir()
	}
	if s.DBPath == "" {
		s.DBPath = filepath.Join(s.DataDir, "news.db")
	}
	if s.HistoryPath == "" {
		s.HistoryPath = filepath.Join(s.DataDir, "runs.db")
	}
	if s.NewsletterDir == "" {
		s.NewsletterDir = filepath.Join(s.DataDir, "newsletters")
	}
	if s.SnapshotDir == "" {
		s.SnapshotDir = filepath.Join(s.DataDir, "snapshots")
	}
}

// Validate checks ranges and URLs.
func (c *Config) Validate() error {
	if c.Scrape.DaysBack <= 0 {
		return fmt.Errorf("scrape.days_back must be positive, got %d", c.Scrape.DaysBack)
	}
	if c.Scrape.SourceDelay < 0 {
		return fmt.Errorf("scrape.source_delay must not be negative")
	}
	if c.Scrape.RequestTimeout <= 0 {
		return fmt.Errorf("scrape.request_timeout must be positive")
	}
	if c.Scrape.ContentWorkers <= 0 {
		c.Scrape.ContentWorkers = 1
	}
	if c.Newsletter.MinImportance < 0 || c.Newsletter.MinImportance > 1 {
		return fmt.Errorf("newsletter.min_importance must be within [0,1], got %v", c.Newsletter.MinImportance)
	}
	if c.Newsletter.MaxArticles <= 0 {
		return fmt.Errorf("newsletter.max_articles must be positive, got %d", c.Newsletter.MaxArticles)
	}
	if c.Inference.Enabled {
		u, err := url.Parse(c.Inference.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("inference.base_url must be an http(s) url, got %q", c.Inference.BaseURL)
		}
		if c.Inference.Timeout <= 0 {
			return fmt.Errorf("inference.timeout must be positive")
		}
	}
	return nil
}
