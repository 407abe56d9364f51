package git

import (
	"errors"
	"os/exec"
	"strings"
)

var errGitNotFound = errors.New("git executable not found in PATH")

// Common error messages from git
const (
	errMsgAuthFailed       = "Authentication failed"
	errMsgAuthRequired     = "authentication required"
	errMsgPermissionDenied = "Permission denied"
	errMsgCouldNotRead     = "could not read Username"
	errMsgRepoNotFound     = "Repository not found"
	errMsgNotFound         = "not found"
	errMsgAlreadyExists    = "already exists"
)

// IsAuthRequired checks if the error indicates authentication is required
func IsAuthRequired(err error) bool {
	return containsError(err, errMsgAuthFailed) ||
		containsError(err, errMsgAuthRequired) ||
		containsError(err, errMsgPermissionDenied) ||
		containsError(err, errMsgCouldNotRead)
}

// IsRepoNotFound checks if the error indicates the remote repository does not exist
func IsRepoNotFound(err error) bool {
	return containsError(err, errMsgRepoNotFound) || containsError(err, errMsgNotFound)
}

// IsAlreadyExists checks if the error indicates the destination already exists
func IsAlreadyExists(err error) bool {
	return containsError(err, errMsgAlreadyExists)
}

// IsGitNotFound checks if the error indicates the git binary could not be located
func IsGitNotFound(err error) bool {
	return errors.Is(err, errGitNotFound) || errors.Is(err, exec.ErrNotFound)
}

// containsError checks if the error contains a specific message
func containsError(err error, msg string) bool {
	if err == nil {
		return false
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) && gitErr.Stderr != "" {
		return strings.Contains(strings.ToLower(gitErr.Stderr), strings.ToLower(msg))
	}

	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(msg))
}

// GetExitCode returns the exit code from a git error, or -1 if not available
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return gitErr.ExitCode
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}

// Describe returns a short human-readable cause for a clone failure
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case IsGitNotFound(err):
		return "git executable not found"
	case IsAlreadyExists(err):
		return "destination already exists"
	case IsAuthRequired(err):
		return "authentication required"
	case IsRepoNotFound(err):
		return "repository not found"
	}

	return err.Error()
}

// NewGitError creates a GitError from command output and error
func NewGitError(args []string, stderr string, err error) *GitError {
	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return &GitError{
		ExitCode: exitCode,
		Stderr:   stderr,
		Args:     args,
		err:      err,
	}
}
