package git

import (
	"context"
	"fmt"
	"strings"
)

// Transport names accepted by NewTransport
const (
	TransportExec  = "git"
	TransportGoGit = "go-git"
)

// Transport clones a single repository into a working directory
type Transport interface {
	Clone(ctx context.Context, cloneURL, workDir string) error
	Name() string
}

// TransportOptions configures the transport built by NewTransport
type TransportOptions struct {
	Shallow bool
}

// Transports lists the supported transport names
func Transports() []string {
	return []string{TransportExec, TransportGoGit}
}

// NormalizeTransport maps a transport name or alias to its canonical name
func NormalizeTransport(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TransportExec, "exec":
		return TransportExec, true
	case TransportGoGit, "gogit":
		return TransportGoGit, true
	}

	return "", false
}

// NewTransport returns the transport registered under name
func NewTransport(name string, opts TransportOptions) (Transport, error) {
	canonical, ok := NormalizeTransport(name)
	if !ok {
		return nil, fmt.Errorf("unknown transport %q (supported: %s)", name, strings.Join(Transports(), ", "))
	}

	if canonical == TransportGoGit {
		return NewGoGitTransport(opts.Shallow), nil
	}

	c := NewClient()
	c.Shallow = opts.Shallow

	return c, nil
}
