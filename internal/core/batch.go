package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/inovacc/orgclone/internal/git"
	"github.com/inovacc/orgclone/internal/giturl"
	"github.com/inovacc/orgclone/internal/layout"
	"golang.org/x/sync/errgroup"
)

// MaxParallel bounds the number of concurrent clones
const MaxParallel = 10

// CloneTransport clones url with workDir as the working directory. Any
// returned error is treated as a failed clone.
type CloneTransport interface {
	Clone(ctx context.Context, url, workDir string) error
}

// Reporter receives each outcome as soon as it is known. done counts the
// outcomes reported so far, including this one.
type Reporter interface {
	Report(outcome Outcome, done, total int)
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(outcome Outcome, done, total int)

// Report calls f
func (f ReporterFunc) Report(outcome Outcome, done, total int) {
	f(outcome, done, total)
}

// MultiReporter fans an outcome out to several reporters in order
type MultiReporter []Reporter

// Report forwards the outcome to every non-nil reporter
func (m MultiReporter) Report(outcome Outcome, done, total int) {
	for _, r := range m {
		if r != nil {
			r.Report(outcome, done, total)
		}
	}
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithReporter sets where per-URL outcomes are reported
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) {
		o.reporter = r
	}
}

// WithParallel sets how many URLs are processed at once. Values below 1 mean
// sequential processing; values above MaxParallel are capped.
func WithParallel(n int) Option {
	return func(o *Orchestrator) {
		o.parallel = min(max(n, 1), MaxParallel)
	}
}

// Orchestrator clones a list of repository URLs into <root>/<organization>,
// recording an outcome for every URL and never stopping on a per-URL failure.
type Orchestrator struct {
	transport CloneTransport
	logger    *slog.Logger
	reporter  Reporter
	parallel  int
}

// NewOrchestrator creates an orchestrator cloning through transport
func NewOrchestrator(transport CloneTransport, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		transport: transport,
		logger:    slog.Default(),
		parallel:  1,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run processes urls and returns one outcome per URL in input order. It
// returns only after every URL has been processed; no per-URL failure aborts
// the batch.
func (o *Orchestrator) Run(ctx context.Context, urls []string, root string) []Outcome {
	outcomes := make([]Outcome, len(urls))

	// A root that cannot be created makes every folder creation below fail,
	// which is reported per URL.
	if err := layout.EnsureDirectory(root); err != nil {
		o.logger.Error("failed to create destination root",
			slog.String("root", root),
			slog.String("error", err.Error()),
		)
	}

	o.logger.Info("starting batch clone",
		slog.String("root", root),
		slog.Int("urls", len(urls)),
		slog.Int("parallel", o.parallel),
	)

	var (
		mu   sync.Mutex
		done int
	)

	report := func(i int, outcome Outcome) {
		mu.Lock()
		defer mu.Unlock()

		outcomes[i] = outcome
		done++

		o.log(outcome)

		if o.reporter != nil {
			o.reporter.Report(outcome, done, len(urls))
		}
	}

	if o.parallel <= 1 {
		for i, rawURL := range urls {
			report(i, o.process(ctx, rawURL, root))
		}

		return outcomes
	}

	var g errgroup.Group

	g.SetLimit(o.parallel)

	for i, rawURL := range urls {
		g.Go(func() error {
			report(i, o.process(ctx, rawURL, root))

			return nil
		})
	}

	_ = g.Wait()

	return outcomes
}

// process resolves, prepares and clones a single URL
func (o *Orchestrator) process(ctx context.Context, rawURL, root string) (outcome Outcome) {
	start := time.Now()
	outcome.URL = rawURL

	defer func() {
		outcome.Duration = time.Since(start)
	}()

	org, ok := giturl.ResolveOrganization(rawURL)
	if !ok {
		outcome.Status = StatusSkipped
		outcome.Reason = ReasonNoOrganization
		outcome.Err = &OutcomeError{URL: rawURL, Stage: StageResolve, Err: ErrNoOrganization}

		return outcome
	}

	outcome.Organization = org
	outcome.Folder = layout.OrganizationFolder(root, org)

	if !layout.Within(root, outcome.Folder) || outcome.Folder == filepath.Clean(root) {
		outcome.Status = StatusFailed
		outcome.Reason = ReasonDirectory
		outcome.Err = &OutcomeError{URL: rawURL, Stage: StageLayout, Err: fmt.Errorf("%w: %s", ErrOutsideRoot, outcome.Folder)}

		return outcome
	}

	if err := layout.EnsureDirectory(outcome.Folder); err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = ReasonDirectory
		outcome.Err = &OutcomeError{URL: rawURL, Stage: StageLayout, Err: err}

		return outcome
	}

	o.logger.Debug("cloning repository",
		slog.String("url", rawURL),
		slog.String("folder", outcome.Folder),
	)

	if err := o.clone(ctx, rawURL, outcome.Folder); err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = ReasonTransport
		outcome.Err = &OutcomeError{URL: rawURL, Stage: StageClone, Err: err}

		return outcome
	}

	outcome.Status = StatusSucceeded

	return outcome
}

// clone invokes the transport, turning a panic into an ordinary failure
func (o *Orchestrator) clone(ctx context.Context, rawURL, workDir string) (err error) {
	if o.transport == nil {
		return fmt.Errorf("no clone transport configured")
	}

	defer func() {
		if r := recover(); r != nil {
			err = &transportPanicError{value: r}
		}
	}()

	return o.transport.Clone(ctx, rawURL, workDir)
}

func (o *Orchestrator) log(outcome Outcome) {
	attrs := []any{
		slog.String("url", outcome.URL),
		slog.String("status", outcome.Status.String()),
		slog.Duration("duration", outcome.Duration),
	}

	if outcome.Folder != "" {
		attrs = append(attrs, slog.String("folder", outcome.Folder))
	}

	switch outcome.Status {
	case StatusSucceeded:
		o.logger.Info("repository cloned", attrs...)
	case StatusSkipped:
		o.logger.Warn("repository skipped", append(attrs, slog.String("reason", outcome.Reason))...)
	case StatusFailed:
		attrs = append(attrs,
			slog.String("reason", outcome.Reason),
			slog.String("error", errString(outcome.Err)),
		)

		if outcome.Reason == ReasonTransport {
			attrs = append(attrs, slog.Int("exit_code", git.GetExitCode(outcome.Err)))
		}

		o.logger.Error("repository failed", attrs...)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
