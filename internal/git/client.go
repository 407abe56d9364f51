// Package git provides the clone transports used by the batch orchestrator:
// an exec-based client driving the git binary and an in-process go-git transport.
package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/cli/safeexec"
)

// Client wraps git operations executed through the git binary
type Client struct {
	GitPath string // Path to git executable
	Shallow bool   // Clone with --depth 1
}

// NewClient creates a new git client
func NewClient() *Client {
	gitPath, _ := safeexec.LookPath("git")

	return &Client{GitPath: gitPath}
}

// Command creates a git command running in dir.
// Note: Do not set Stdout/Stderr if you plan to use CombinedOutput()
func (c *Client) Command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.GitPath, args...)

	if dir != "" {
		cmd.Dir = dir
	}

	// never block on a credential prompt in batch mode
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	return cmd
}

// Clone runs `git clone <url>` with workDir as the working directory, so the
// repository lands in workDir/<repo name>.
func (c *Client) Clone(ctx context.Context, cloneURL, workDir string) error {
	args := []string{"clone"}
	if c.Shallow {
		args = append(args, "--depth", "1")
	}

	args = append(args, "--", cloneURL)

	if c.GitPath == "" {
		return NewGitError(args, "", errGitNotFound)
	}

	output, err := c.Command(ctx, workDir, args...).CombinedOutput()
	if err != nil {
		return NewGitError(args, string(output), err)
	}

	return nil
}

// Version returns the output of `git --version`
func (c *Client) Version(ctx context.Context) (string, error) {
	if c.GitPath == "" {
		return "", errGitNotFound
	}

	output, err := c.Command(ctx, "", "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get git version: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// Name identifies the transport in logs and run history
func (c *Client) Name() string {
	return TransportExec
}

// GitError represents a git command error
type GitError struct {
	ExitCode int
	Stderr   string
	Args     []string
	err      error
}

func (e *GitError) Error() string {
	if e.Stderr == "" {
		return fmt.Errorf("git command failed: %w", e.err).Error()
	}

	return fmt.Sprintf("git command failed: %s", strings.TrimSpace(e.Stderr))
}

func (e *GitError) Unwrap() error {
	return e.err
}
