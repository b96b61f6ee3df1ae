// Package snapshot keeps dated JSON dumps of the articles each run scraped.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/abhijeet6401/newslet/internal/domain"
)

const (
	filePrefix = "financial_news_"
	fileExt    = ".json"
)

// ErrNoSnapshot is returned by Latest when the directory holds no snapshot.
var ErrNoSnapshot = errors.New("no snapshot found")

// Snapshot is one stored dump.
type Snapshot struct {
	File     string           `json:"file"`
	Articles []domain.Article `json:"articles"`
}

// Name returns the file name for a snapshot taken at now.
func Name(now time.Time) string {
	return filePrefix + now.Format("20060102_150405") + fileExt
}

// Write dumps articles to dir and returns the file name.
func Write(dir string, articles []domain.Article, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	name := Name(now)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", name, err)
	}
	return name, nil
}

// Latest loads the newest snapshot in dir. Names sort by timestamp.
func Latest(dir string) (Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("list snapshots: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExt) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return Snapshot{}, ErrNoSnapshot
	}
	slices.Sort(names)
	latest := names[len(names)-1]

	data, err := os.ReadFile(filepath.Join(dir, latest))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", latest, err)
	}
	snap := Snapshot{File: latest}
	if err := json.Unmarshal(data, &snap.Articles); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", latest, err)
	}
	return snap, nil
}
