package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scrape.DaysBack != 7 {
		t.Errorf("days_back = %d, want 7", cfg.Scrape.DaysBack)
	}
	if cfg.Scrape.SourceDelay != time.Second {
		t.Errorf("source_delay = %v, want 1s", cfg.Scrape.SourceDelay)
	}
	if len(cfg.Scrape.Sources) != 3 {
		t.Errorf("sources = %v", cfg.Scrape.Sources)
	}
	if cfg.Storage.DBPath != filepath.Join(cfg.Storage.DataDir, "news.db") {
		t.Errorf("db path not derived from data dir: %s", cfg.Storage.DBPath)
	}
	if cfg.Inference.Enabled {
		t.Error("inference should be disabled by default")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "newslet.yaml")
	data := []byte(`
storage:
  data_dir: ` + dir + `
scrape:
  days_back: 3
  sources: [cnbc]
newsletter:
  max_articles: 5
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NEWSLET_NEWSLETTER_MAX_ARTICLES", "9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scrape.DaysBack != 3 {
		t.Errorf("days_back = %d, want 3", cfg.Scrape.DaysBack)
	}
	if len(cfg.Scrape.Sources) != 1 || cfg.Scrape.Sources[0] != "cnbc" {
		t.Errorf("sources = %v", cfg.Scrape.Sources)
	}
	if cfg.Newsletter.MaxArticles != 9 {
		t.Errorf("env override not applied: %d", cfg.Newsletter.MaxArticles)
	}
	if cfg.Storage.SnapshotDir != filepath.Join(dir, "snapshots") {
		t.Errorf("snapshot dir = %s", cfg.Storage.SnapshotDir)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NEWSLET_SCRAPE_DAYS_BACK=2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("NEWSLET_SCRAPE_DAYS_BACK") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scrape.DaysBack != 2 {
		t.Errorf("days_back = %d, want 2 from .env", cfg.Scrape.DaysBack)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"days back", func(c *Config) { c.Scrape.DaysBack = 0 }},
		{"min importance", func(c *Config) { c.Newsletter.MinImportance = 1.5 }},
		{"max articles", func(c *Config) { c.Newsletter.MaxArticles = 0 }},
		{"inference url", func(c *Config) {
			c.Inference.Enabled = true
			c.Inference.BaseURL = "ftp://models"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
