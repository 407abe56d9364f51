package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/inovacc/orgclone/internal/git"
)

const maxDetailLen = 100

// LineReporter writes one progress line per outcome
type LineReporter struct {
	W io.Writer
}

// NewLineReporter creates a reporter writing to w
func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{W: w}
}

// Report writes a line such as "[ 50%] [OK   ] <url> cloned into <folder>"
func (r *LineReporter) Report(outcome Outcome, done, total int) {
	pct := 100.0
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}

	_, _ = fmt.Fprintf(r.W, "[%3.0f%%] [%-5s] %s\n", pct, outcome.Status.Tag(), Describe(outcome))
}

// Describe returns the human-readable status line for an outcome
func Describe(outcome Outcome) string {
	switch outcome.Status {
	case StatusSucceeded:
		return fmt.Sprintf("%s cloned into %s", outcome.URL, outcome.Folder)
	case StatusSkipped:
		return fmt.Sprintf("%s skipped: %s", outcome.URL, outcome.Reason)
	case StatusFailed:
		return fmt.Sprintf("%s failed to clone: %s", outcome.URL, FailureDetail(outcome))
	}

	return outcome.URL
}

// FailureDetail returns the reason of a failed outcome with a short cause
func FailureDetail(outcome Outcome) string {
	if outcome.Err == nil {
		return outcome.Reason
	}

	cause := outcome.Err

	var oe *OutcomeError
	if errors.As(outcome.Err, &oe) {
		cause = oe.Err
	}

	text := cause.Error()
	if outcome.Reason == ReasonTransport {
		text = git.Describe(cause)
	}

	detail := strings.Join(strings.Fields(text), " ")
	if len(detail) > maxDetailLen {
		detail = detail[:maxDetailLen-3] + "..."
	}

	return fmt.Sprintf("%s (%s)", outcome.Reason, detail)
}

// PrintPlan prints what a run would do without executing it
func PrintPlan(w io.Writer, root string, plan []PlannedClone) {
	_, _ = fmt.Fprintf(w, "\nDry run: cloning %d repositories\n", len(plan))
	_, _ = fmt.Fprintf(w, "Destination root: %s\n\n", root)

	cloneCount := 0
	skipCount := 0

	for _, p := range plan {
		if p.Skip {
			skipCount++
		} else {
			cloneCount++
		}
	}

	_, _ = fmt.Fprintf(w, "Actions:\n")
	_, _ = fmt.Fprintf(w, "  Clone: %d repositories\n", cloneCount)
	_, _ = fmt.Fprintf(w, "  Skip: %d repositories\n\n", skipCount)

	if cloneCount > 0 {
		_, _ = fmt.Fprintln(w, "Repositories to clone:")

		for _, p := range plan {
			if !p.Skip {
				_, _ = fmt.Fprintf(w, "  * %s -> %s\n", p.URL, p.Folder)
			}
		}

		_, _ = fmt.Fprintln(w)
	}

	if skipCount > 0 {
		_, _ = fmt.Fprintln(w, "Repositories to skip:")

		for _, p := range plan {
			if p.Skip {
				_, _ = fmt.Fprintf(w, "  * %s - %s\n", p.URL, p.Reason)
			}
		}

		_, _ = fmt.Fprintln(w)
	}
}

// PrintSummary prints the totals of a finished batch and lists the failures
func PrintSummary(w io.Writer, outcomes []Outcome, duration time.Duration) {
	s := Summarize(outcomes)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	_, _ = fmt.Fprintln(w, "                     Clone Complete")
	_, _ = fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	_, _ = fmt.Fprintf(w, "  Cloned:   %d\n", s.Succeeded)
	_, _ = fmt.Fprintf(w, "  Skipped:  %d\n", s.Skipped)
	_, _ = fmt.Fprintf(w, "  Failed:   %d\n", s.Failed)
	_, _ = fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
	_, _ = fmt.Fprintf(w, "  Total:    %d repositories in %s\n", s.Total(), duration.Round(time.Millisecond))
	_, _ = fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")

	if s.Failed > 0 {
		_, _ = fmt.Fprintln(w, "\nFailed repositories:")

		for _, o := range outcomes {
			if o.Status == StatusFailed {
				_, _ = fmt.Fprintf(w, "  - %s: %s\n", o.URL, FailureDetail(o))
			}
		}
	}
}

// LogSummary logs the final summary of a batch
func LogSummary(logger *slog.Logger, outcomes []Outcome, duration time.Duration) {
	s := Summarize(outcomes)

	logger.Info("batch clone complete",
		slog.Int("cloned", s.Succeeded),
		slog.Int("skipped", s.Skipped),
		slog.Int("failed", s.Failed),
		slog.Int("organizations", len(Organizations(outcomes))),
		slog.Duration("duration", duration),
	)
}

// LogPlan logs a dry-run plan
func LogPlan(logger *slog.Logger, root string, plan []PlannedClone) {
	for _, p := range plan {
		logger.Info("planned action",
			slog.String("url", p.URL),
			slog.String("organization", p.Organization),
			slog.String("folder", p.Folder),
			slog.Bool("skip", p.Skip),
			slog.String("reason", p.Reason),
			slog.String("root", root),
		)
	}
}
