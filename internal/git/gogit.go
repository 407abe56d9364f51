package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/inovacc/orgclone/internal/giturl"
)

// GoGitTransport clones repositories in-process with go-git, without
// requiring a git binary on the host.
type GoGitTransport struct {
	Shallow bool
}

// NewGoGitTransport creates a go-git based transport
func NewGoGitTransport(shallow bool) *GoGitTransport {
	return &GoGitTransport{Shallow: shallow}
}

// Clone clones cloneURL into workDir/<repo name>, the same place `git clone`
// run inside workDir would use.
func (t *GoGitTransport) Clone(ctx context.Context, cloneURL, workDir string) error {
	name := giturl.RepoName(cloneURL)
	if name == "" {
		return fmt.Errorf("cannot derive repository name from %q", cloneURL)
	}

	dest := filepath.Join(workDir, name)

	existed, err := occupied(dest)
	if err != nil {
		return err
	}

	if existed {
		return &GitError{
			ExitCode: 128,
			Stderr:   fmt.Sprintf("fatal: destination path '%s' already exists and is not an empty directory.", name),
			Args:     []string{"clone", cloneURL},
			err:      gogit.ErrRepositoryAlreadyExists,
		}
	}

	opts := &gogit.CloneOptions{
		URL: cloneURL,
	}

	if t.Shallow {
		opts.Depth = 1
	}

	if _, err := gogit.PlainCloneContext(ctx, dest, false, opts); err != nil {
		_ = os.RemoveAll(dest)

		return fmt.Errorf("cloning repository: %w", err)
	}

	return nil
}

// Name identifies the transport in logs and run history
func (t *GoGitTransport) Name() string {
	return TransportGoGit
}

// occupied reports whether path holds anything git would refuse to clone into.
func occupied(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if !info.IsDir() {
		return true, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}

	return len(entries) > 0, nil
}
