package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/orgclone/internal/core"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

const (
	recentActivity = 5
	maxMessageLen  = 70
)

// RunFunc runs a batch, reporting every outcome to reporter
type RunFunc func(ctx context.Context, reporter core.Reporter) []core.Outcome

// Message types
type outcomeMsg struct {
	outcome core.Outcome
	done    int
	total   int
}

type batchDoneMsg struct {
	outcomes []core.Outcome
}

// BatchModel shows the progress of a running batch clone
type BatchModel struct {
	root   string
	total  int
	events <-chan tea.Msg
	cancel context.CancelFunc

	// Progress tracking
	current   int
	succeeded int
	skipped   int
	failed    int

	// Last completed outcomes, oldest first
	activity []core.Outcome
	outcomes []core.Outcome

	// UI components
	spinner  spinner.Model
	progress progress.Model

	done       bool
	cancelling bool
}

// NewBatchModel creates a model reading batch events from events. cancel is
// called when the user interrupts the batch.
func NewBatchModel(root string, total int, events <-chan tea.Msg, cancel context.CancelFunc) *BatchModel {
	m := &BatchModel{
		root:     root,
		total:    total,
		events:   events,
		cancel:   cancel,
		activity: make([]core.Outcome, 0, recentActivity),
	}

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = spinnerStyle

	m.progress = progress.New(progress.WithDefaultGradient())

	return m
}

func (m *BatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m *BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Remaining URLs still get an outcome, so wait for the batch to drain.
			if !m.cancelling {
				m.cancelling = true

				if m.cancel != nil {
					m.cancel()
				}
			}

			return m, nil
		}

	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-20, 10), 80)

		return m, nil

	case outcomeMsg:
		m.current = msg.done
		m.total = msg.total

		switch msg.outcome.Status {
		case core.StatusSucceeded:
			m.succeeded++
		case core.StatusSkipped:
			m.skipped++
		case core.StatusFailed:
			m.failed++
		}

		m.addActivity(msg.outcome)

		return m, m.waitForEvent()

	case batchDoneMsg:
		m.done = true
		m.outcomes = msg.outcomes

		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *BatchModel) View() string {
	if m.done {
		return m.renderComplete()
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(boldStyle.Render(fmt.Sprintf("%s Cloning into %s", m.spinner.View(), m.root)))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" (%d repositories)", m.total)))
	b.WriteString("\n\n")

	b.WriteString(successStyle.Render(fmt.Sprintf("  Cloned:  %d\n", m.succeeded)))
	b.WriteString(warningStyle.Render(fmt.Sprintf("  Skipped: %d\n", m.skipped)))
	b.WriteString(errorStyle.Render(fmt.Sprintf("  Failed:  %d\n", m.failed)))
	b.WriteString("\n")

	pct := 1.0
	if m.total > 0 {
		pct = float64(m.current) / float64(m.total)
	}

	b.WriteString(m.progress.ViewAs(pct))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" %d/%d\n\n", m.current, m.total)))

	if len(m.activity) > 0 {
		b.WriteString(boldStyle.Render("Recent activity:"))
		b.WriteString("\n")

		for _, o := range m.activity {
			b.WriteString(statusStyle(o.Status).Render(fmt.Sprintf("  [%s] ", o.Status.Tag())))
			b.WriteString(dimStyle.Render(truncate(core.Describe(o), maxMessageLen)))
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	if m.cancelling {
		b.WriteString(warningStyle.Render("Cancelling, waiting for running clones to stop..."))
	} else {
		b.WriteString(dimStyle.Render("Press 'q' to cancel"))
	}

	b.WriteString("\n")

	return b.String()
}

func (m *BatchModel) renderComplete() string {
	var b strings.Builder

	b.WriteString("\n")

	if m.failed > 0 {
		b.WriteString(warningStyle.Render("Batch clone finished with failures"))
	} else {
		b.WriteString(successStyle.Render("Batch clone complete!"))
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf(" %d cloned, %d skipped, %d failed", m.succeeded, m.skipped, m.failed)))
	b.WriteString("\n\n")

	return b.String()
}

// Outcomes returns the outcomes of the finished batch
func (m *BatchModel) Outcomes() []core.Outcome {
	return m.outcomes
}

// Done reports whether the batch finished
func (m *BatchModel) Done() bool {
	return m.done
}

func (m *BatchModel) addActivity(o core.Outcome) {
	if len(m.activity) == recentActivity {
		m.activity = append(m.activity[:0], m.activity[1:]...)
	}

	m.activity = append(m.activity, o)
}

func (m *BatchModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.events
		if !ok {
			return batchDoneMsg{outcomes: m.outcomes}
		}

		return msg
	}
}

func statusStyle(s core.Status) lipgloss.Style {
	switch s {
	case core.StatusSucceeded:
		return successStyle
	case core.StatusSkipped:
		return warningStyle
	}

	return errorStyle
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n-3] + "..."
}

// RunBatch runs the batch behind a progress view and returns its outcomes.
// The batch always runs to completion, even when the view fails: outcomes the
// view did not get to show are then passed to fallback.
func RunBatch(ctx context.Context, root string, total int, run RunFunc, fallback core.Reporter, opts ...tea.ProgramOption) ([]core.Outcome, time.Duration, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// one event per URL plus the final done message
	events := make(chan tea.Msg, total+1)
	finished := make(chan []core.Outcome, 1)
	start := time.Now()

	go func() {
		outcomes := run(ctx, core.ReporterFunc(func(o core.Outcome, done, n int) {
			events <- outcomeMsg{outcome: o, done: done, total: n}
		}))

		events <- batchDoneMsg{outcomes: outcomes}
		close(events)

		finished <- outcomes
	}()

	model := NewBatchModel(root, total, events, cancel)

	_, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		drainEvents(events, fallback)
	}

	outcomes := <-finished

	return outcomes, time.Since(start), err
}

// drainEvents forwards the remaining outcome events to r until the batch is done
func drainEvents(events <-chan tea.Msg, r core.Reporter) {
	for msg := range events {
		switch msg := msg.(type) {
		case outcomeMsg:
			if r != nil {
				r.Report(msg.outcome, msg.done, msg.total)
			}
		case batchDoneMsg:
			return
		}
	}
}
