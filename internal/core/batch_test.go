package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/inovacc/orgclone/internal/git"
	"github.com/inovacc/orgclone/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cloneCall struct {
	URL       string
	WorkDir   string
	DirExists bool
}

// fakeTransport records calls and fails for URLs listed in failures.
type fakeTransport struct {
	mu       sync.Mutex
	calls    []cloneCall
	failures map[string]error
	panics   map[string]bool
}

func (f *fakeTransport) Clone(_ context.Context, url, workDir string) error {
	info, err := os.Stat(workDir)

	f.mu.Lock()
	f.calls = append(f.calls, cloneCall{URL: url, WorkDir: workDir, DirExists: err == nil && info.IsDir()})
	f.mu.Unlock()

	if f.panics[url] {
		panic("transport exploded")
	}

	return f.failures[url]
}

func (f *fakeTransport) urls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	urls := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		urls = append(urls, c.URL)
	}

	return urls
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var outcomeCmp = cmpopts.IgnoreFields(Outcome{}, "Duration", "Err")

func TestRun_GroupsByOrganization(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cloned_repos")
	urls := []string{
		"https://x.test/orgA/r1",
		"https://x.test/orgA/r2",
		"https://x.test/orgB/r3",
	}

	transport := &fakeTransport{}
	outcomes := NewOrchestrator(transport, WithLogger(quietLogger())).Run(context.Background(), urls, root)

	want := []Outcome{
		{URL: urls[0], Organization: "orgA", Folder: filepath.Join(root, "orgA"), Status: StatusSucceeded},
		{URL: urls[1], Organization: "orgA", Folder: filepath.Join(root, "orgA"), Status: StatusSucceeded},
		{URL: urls[2], Organization: "orgB", Folder: filepath.Join(root, "orgB"), Status: StatusSucceeded},
	}
	if diff := cmp.Diff(want, outcomes, outcomeCmp); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	var dirs []string
	for _, e := range entries {
		require.True(t, e.IsDir())
		dirs = append(dirs, e.Name())
	}

	assert.Equal(t, []string{"orgA", "orgB"}, dirs)
	assert.Equal(t, urls, transport.urls())

	for _, c := range transport.calls {
		assert.True(t, c.DirExists, "folder for %s must exist before cloning", c.URL)
	}
}

func TestRun_SkipsUnresolvableURL(t *testing.T) {
	root := t.TempDir()
	urls := []string{
		"https://x.test/orgA/r1",
		"https://x.test",
		"https://x.test/orgB/r2",
	}

	transport := &fakeTransport{}
	outcomes := NewOrchestrator(transport, WithLogger(quietLogger())).Run(context.Background(), urls, root)

	require.Len(t, outcomes, 3)
	assert.Equal(t, StatusSucceeded, outcomes[0].Status)
	assert.Equal(t, StatusSkipped, outcomes[1].Status)
	assert.Equal(t, ReasonNoOrganization, outcomes[1].Reason)
	assert.True(t, errors.Is(outcomes[1].Err, ErrNoOrganization))
	assert.Equal(t, StatusSucceeded, outcomes[2].Status)

	assert.Equal(t, []string{urls[0], urls[2]}, transport.urls())
}

func TestRun_DotDotOwnerStaysUnderRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	urls := []string{
		"https://x.test/%2e%2e/evil",
		"https://x.test/../../evil2",
		"https://x.test/./repo",
	}

	transport := &fakeTransport{}
	outcomes := NewOrchestrator(transport, WithLogger(quietLogger())).Run(context.Background(), urls, root)

	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.Equal(t, StatusSkipped, o.Status, o.URL)
		assert.Equal(t, ReasonNoOrganization, o.Reason, o.URL)
	}

	assert.Empty(t, transport.urls())

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	require.Len(t, entries, 1, "nothing is created next to the root")
	assert.Equal(t, "root", entries[0].Name())
}

func TestRun_TransportFailureDoesNotStopBatch(t *testing.T) {
	root := t.TempDir()
	urls := []string{
		"https://x.test/orgA/broken",
		"https://x.test/orgA/r2",
		"https://x.test/orgB/r3",
	}

	exitErr := &git.GitError{ExitCode: 1, Stderr: "fatal: repository not found"}
	transport := &fakeTransport{failures: map[string]error{urls[0]: exitErr}}

	outcomes := NewOrchestrator(transport, WithLogger(quietLogger())).Run(context.Background(), urls, root)

	require.Len(t, outcomes, 3)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, ReasonTransport, outcomes[0].Reason)
	assert.Equal(t, 1, git.GetExitCode(outcomes[0].Err))

	var oe *OutcomeError
	require.True(t, errors.As(outcomes[0].Err, &oe))
	assert.Equal(t, StageClone, oe.Stage)

	assert.Equal(t, StatusSucceeded, outcomes[1].Status)
	assert.Equal(t, StatusSucceeded, outcomes[2].Status)
	assert.Equal(t, urls, transport.urls())
}

func TestRun_DirectoryCollisionFailsOnlyThatOrganization(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "orgA"), []byte("occupied"), 0o644))

	urls := []string{
		"https://x.test/orgA/r1",
		"https://x.test/orgB/r2",
		"https://x.test/orgA/r3",
	}

	transport := &fakeTransport{}
	outcomes := NewOrchestrator(transport, WithLogger(quietLogger())).Run(context.Background(), urls, root)

	require.Len(t, outcomes, 3)

	for _, i := range []int{0, 2} {
		assert.Equal(t, StatusFailed, outcomes[i].Status)
		assert.Equal(t, ReasonDirectory, outcomes[i].Reason)

		var notDir *layout.NotDirectoryError
		assert.True(t, errors.As(outcomes[i].Err, &notDir))
	}

	assert.Equal(t, StatusSucceeded, outcomes[1].Status)
	assert.Equal(t, []string{urls[1]}, transport.urls())
}

func TestRun_UnusableRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "root")
	require.NoError(t, os.WriteFile(root, []byte("file"), 0o644))

	urls := []string{"https://x.test/orgA/r1", "https://x.test", "https://x.test/orgB/r2"}

	transport := &fakeTransport{}
	outcomes := NewOrchestrator(transport, WithLogger(quietLogger())).Run(context.Background(), urls, root)

	require.Len(t, outcomes, 3)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Equal(t, StatusSkipped, outcomes[1].Status)
	assert.Equal(t, StatusFailed, outcomes[2].Status)
	assert.Empty(t, transport.urls())
}

func TestRun_TransportPanicBecomesFailure(t *testing.T) {
	urls := []string{"https://x.test/orgA/r1", "https://x.test/orgA/r2"}
	transport := &fakeTransport{panics: map[string]bool{urls[0]: true}}

	outcomes := NewOrchestrator(transport, WithLogger(quietLogger())).Run(context.Background(), urls, t.TempDir())

	assert.Equal(t, StatusFailed, outcomes[0].Status)
	assert.Contains(t, outcomes[0].Err.Error(), "transport exploded")
	assert.Equal(t, StatusSucceeded, outcomes[1].Status)
}

func TestRun_NilTransport(t *testing.T) {
	outcomes := NewOrchestrator(nil, WithLogger(quietLogger())).Run(context.Background(), []string{"https://x.test/orgA/r1"}, t.TempDir())

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
}

func TestRun_EmptyInput(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")

	outcomes := NewOrchestrator(&fakeTransport{}, WithLogger(quietLogger())).Run(context.Background(), nil, root)
	assert.Empty(t, outcomes)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRun_RerunIsIdempotentForFolders(t *testing.T) {
	root := t.TempDir()
	urls := []string{"https://x.test/orgA/r1", "https://x.test/orgB/r2"}
	orchestrator := NewOrchestrator(&fakeTransport{}, WithLogger(quietLogger()))

	first := orchestrator.Run(context.Background(), urls, root)
	second := orchestrator.Run(context.Background(), urls, root)

	if diff := cmp.Diff(first, second, outcomeCmp); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestRun_ReporterSeesEveryOutcomeOnce(t *testing.T) {
	urls := []string{"https://x.test/orgA/r1", "https://x.test", "https://x.test/orgB/r2"}

	var (
		reported []string
		dones    []int
	)

	reporter := ReporterFunc(func(o Outcome, done, total int) {
		assert.Equal(t, len(urls), total)
		reported = append(reported, o.URL)
		dones = append(dones, done)
	})

	NewOrchestrator(&fakeTransport{}, WithLogger(quietLogger()), WithReporter(reporter)).
		Run(context.Background(), urls, t.TempDir())

	assert.Equal(t, urls, reported)
	assert.Equal(t, []int{1, 2, 3}, dones)
}

func TestRun_ParallelKeepsInputOrder(t *testing.T) {
	root := t.TempDir()

	var urls []string
	for _, org := range []string{"orgA", "orgB", "orgC"} {
		for _, repo := range []string{"r1", "r2", "r3", "r4"} {
			urls = append(urls, "https://x.test/"+org+"/"+repo)
		}
	}

	urls = append(urls, "https://x.test/lonely")

	failing := urls[5]
	transport := &fakeTransport{failures: map[string]error{failing: errors.New("exit status 1")}}

	var (
		mu    sync.Mutex
		count int
	)

	reporter := ReporterFunc(func(Outcome, int, int) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	outcomes := NewOrchestrator(transport,
		WithLogger(quietLogger()),
		WithParallel(4),
		WithReporter(reporter),
	).Run(context.Background(), urls, root)

	require.Len(t, outcomes, len(urls))
	assert.Equal(t, len(urls), count)

	for i, o := range outcomes {
		assert.Equal(t, urls[i], o.URL)

		switch {
		case o.URL == failing:
			assert.Equal(t, StatusFailed, o.Status)
		case strings.HasSuffix(o.URL, "lonely"):
			assert.Equal(t, StatusSkipped, o.Status)
		default:
			assert.Equal(t, StatusSucceeded, o.Status)
		}
	}

	assert.Len(t, transport.urls(), len(urls)-1)
	assert.Equal(t, []string{"orgA", "orgB", "orgC"}, Organizations(outcomes))
}

func TestWithParallel_Bounds(t *testing.T) {
	assert.Equal(t, 1, NewOrchestrator(nil, WithParallel(0)).parallel)
	assert.Equal(t, 3, NewOrchestrator(nil, WithParallel(3)).parallel)
	assert.Equal(t, MaxParallel, NewOrchestrator(nil, WithParallel(99)).parallel)
}

func TestRun_LogsPerURL(t *testing.T) {
	var buf bytes.Buffer

	transport := &fakeTransport{failures: map[string]error{
		"https://x.test/orgB/r2": &git.GitError{ExitCode: 128, Stderr: "fatal: repository not found"},
	}}

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	NewOrchestrator(transport, WithLogger(logger)).
		Run(context.Background(), []string{"https://x.test/orgA/r1", "https://x.test", "https://x.test/orgB/r2"}, t.TempDir())

	out := buf.String()
	assert.Contains(t, out, "repository cloned")
	assert.Contains(t, out, "repository skipped")
	assert.Contains(t, out, "repository failed")
	assert.Contains(t, out, "exit_code=128")
}

func TestPlan(t *testing.T) {
	root := "out"
	plan := Plan([]string{"https://x.test/orgA/r1", "https://x.test/solo"}, root)

	want := []PlannedClone{
		{URL: "https://x.test/orgA/r1", Organization: "orgA", Folder: filepath.Join(root, "orgA")},
		{URL: "https://x.test/solo", Skip: true, Reason: ReasonNoOrganization},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}
