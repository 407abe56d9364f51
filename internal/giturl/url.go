package giturl

import (
	"net/url"
	"strings"
)

func isSupportedProtocol(u string) bool {
	return strings.HasPrefix(u, "ssh:") ||
		strings.HasPrefix(u, "git+ssh:") ||
		strings.HasPrefix(u, "git:") ||
		strings.HasPrefix(u, "http:") ||
		strings.HasPrefix(u, "git+https:") ||
		strings.HasPrefix(u, "https:")
}

func isPossibleProtocol(u string) bool {
	return isSupportedProtocol(u) ||
		strings.HasPrefix(u, "ftp:") ||
		strings.HasPrefix(u, "ftps:") ||
		strings.HasPrefix(u, "file:")
}

// Parse normalizes git remote urls, including scp-like syntax (git@github.com:owner/repo)
func Parse(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)

	if !isPossibleProtocol(rawURL) &&
		strings.ContainsRune(rawURL, ':') &&
		// not a Windows path
		!strings.ContainsRune(rawURL, '\\') {
		// support scp-like syntax for ssh protocol
		rawURL = "ssh://" + strings.Replace(rawURL, ":", "/", 1)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "git+https":
		u.Scheme = "https"
	case "git+ssh":
		u.Scheme = "ssh"
	}

	if u.Scheme != "ssh" {
		return u, nil
	}

	if strings.HasPrefix(u.Path, "//") {
		u.Path = strings.TrimPrefix(u.Path, "/")
	}

	u.Host = strings.TrimSuffix(u.Host, ":"+u.Port())

	return u, nil
}

// pathSegments returns the non-empty segments of the URL path.
func pathSegments(u *url.URL) []string {
	var segments []string

	for _, part := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}

	return segments
}

func isDotSegment(s string) bool {
	return s == "." || s == ".."
}

// ResolveOrganization returns the owner segment of a repository URL, the first
// path segment of "/owner/repo[/...]". The boolean is false when the URL cannot be
// parsed, its path holds fewer than two segments, or the owner segment is "."
// or "..", which would not name a folder under the destination root.
//
// Accepted shapes include:
//   - "https://github.com/owner/repo"
//   - "https://github.com/owner/repo.git/"
//   - "git@github.com:owner/repo.git"
//   - "ssh://git@github.com:22/owner/repo.git"
//   - "/owner/repo" (no scheme, no host)
func ResolveOrganization(rawURL string) (string, bool) {
	u, err := Parse(rawURL)
	if err != nil {
		return "", false
	}

	segments := pathSegments(u)
	if len(segments) < 2 || isDotSegment(segments[0]) {
		return "", false
	}

	return segments[0], true
}

// RepoName returns the last path segment without the ".git" suffix, which is the
// directory name `git clone` picks when none is given.
func RepoName(rawURL string) string {
	u, err := Parse(rawURL)
	if err != nil {
		return ""
	}

	segments := pathSegments(u)
	if len(segments) == 0 {
		return ""
	}

	name := strings.TrimSuffix(segments[len(segments)-1], ".git")
	if isDotSegment(name) {
		return ""
	}

	return name
}
