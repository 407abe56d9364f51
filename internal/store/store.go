package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/orgclone/internal/core"
)

var (
	// ErrRunNotFound is returned when no run matches the requested ID
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRunID is returned when an ID prefix matches several runs
	ErrAmbiguousRunID = errors.New("run ID prefix is ambiguous")
)

// Store defines the history operations used by the app
type Store interface {
	SaveRun(run *Run) error
	ListRuns(limit int) ([]Run, error)
	GetRun(id string) (*Run, error)
	Close() error
}

// RunOutcome is the persisted form of a single URL outcome
type RunOutcome struct {
	URL          string `json:"url"`
	Organization string `json:"organization,omitempty"`
	Folder       string `json:"folder,omitempty"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	Error        string `json:"error,omitempty"`
	DurationMS   int64  `json:"duration_ms"`
}

// Run records one batch execution
type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Root      string        `json:"root"`
	Transport string        `json:"transport"`
	Parallel  int           `json:"parallel"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Outcomes  []RunOutcome  `json:"outcomes"`
}

// Total returns the number of URLs processed in the run
func (r *Run) Total() int {
	return r.Succeeded + r.Skipped + r.Failed
}

// NewRun builds a run record from the outcomes of a finished batch
func NewRun(root, transport string, parallel int, startedAt time.Time, duration time.Duration, outcomes []core.Outcome) *Run {
	summary := core.Summarize(outcomes)

	run := &Run{
		ID:        uuid.New().String(),
		StartedAt: startedAt,
		Duration:  duration,
		Root:      root,
		Transport: transport,
		Parallel:  parallel,
		Succeeded: summary.Succeeded,
		Skipped:   summary.Skipped,
		Failed:    summary.Failed,
		Outcomes:  make([]RunOutcome, 0, len(outcomes)),
	}

	for _, o := range outcomes {
		ro := RunOutcome{
			URL:          o.URL,
			Organization: o.Organization,
			Folder:       o.Folder,
			Status:       o.Status.String(),
			Reason:       o.Reason,
			DurationMS:   o.Duration.Milliseconds(),
		}

		if o.Status == core.StatusFailed {
			ro.Error = core.FailureDetail(o)
		}

		run.Outcomes = append(run.Outcomes, ro)
	}

	return run
}
