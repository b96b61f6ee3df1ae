package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var runsBucket = []byte("runs")

// History persists finished run statuses in a bbolt file. Keys are the start
// time followed by the run id so a cursor walks runs chronologically.
type History struct {
	db *bolt.DB
}

// OpenHistory opens or creates the history database at path.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs bucket: %w", err)
	}
	return &History{db: db}, nil
}

func (h *History) Close() error { return h.db.Close() }

func historyKey(st Status) []byte {
	started := time.Time{}
	if st.StartedAt != nil {
		started = st.StartedAt.UTC()
	}
	return []byte(started.Format("20060102T150405.000000000") + "/" + st.RunID)
}

// Put stores st, replacing an earlier entry for the same run.
func (h *History) Put(st Status) error {
	if st.RunID == "" {
		return errors.New("run id is empty")
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", st.RunID, err)
	}
	return h.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).Put(historyKey(st), data)
	})
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (h *History) List(limit int) ([]Status, error) {
	var out []Status
	err := h.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var st Status
			if err := json.Unmarshal(v, &st); err != nil {
				return fmt.Errorf("decode run %s: %w", k, err)
			}
			out = append(out, st)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Latest returns the most recent run, if any.
func (h *History) Latest() (Status, bool, error) {
	runs, err := h.List(1)
	if err != nil || len(runs) == 0 {
		return Status{}, false, err
	}
	return runs[0], true, nil
}
