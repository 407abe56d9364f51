package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadRepoList reads repository URLs from path, one per line. Surrounding
// whitespace is trimmed and blank lines are dropped.
func ReadRepoList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading repository list: %w", err)
	}
	defer f.Close()

	urls, err := ParseRepoList(f)
	if err != nil {
		return nil, fmt.Errorf("error reading repository list %s: %w", path, err)
	}

	return urls, nil
}

// ParseRepoList reads URLs from r, one per line
func ParseRepoList(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return urls, nil
}
