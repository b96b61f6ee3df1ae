package runner

import "time"

// Phase is the lifecycle state of a run.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseError     Phase = "error"
)

// Progress checkpoints. Scraping spans 0 up to ProgressScrapeEnd.
const (
	ProgressScrapeEnd = 50
	ProgressAnalyzing = 60
	ProgressSaving    = 80
	ProgressDone      = 100
)

// Status is an immutable snapshot of a run. Updates replace the whole value.
type Status struct {
	RunID        string     `json:"run_id,omitempty"`
	Phase        Phase      `json:"status"`
	Progress     int        `json:"progress"`
	Message      string     `json:"message"`
	Sources      []string   `json:"sources,omitempty"`
	DaysBack     int        `json:"days_back,omitempty"`
	ArticleCount int        `json:"article_count"`
	SavedCount   int        `json:"saved_count"`
	Snapshot     string     `json:"snapshot,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// IdleStatus is reported before the first run.
func IdleStatus() Status {
	return Status{Phase: PhaseIdle}
}

// Running reports whether the run is still in progress.
func (s Status) Running() bool { return s.Phase == PhaseRunning }

// with returns a copy of s with the given progress and message.
func (s Status) with(progress int, msg string) Status {
	s.Progress = progress
	s.Message = msg
	return s
}
