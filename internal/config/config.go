// Package config resolves the settings of a batch run from, in increasing
// precedence: built-in defaults, an INI file, ORGCLONE_* environment variables
// and explicitly set command-line flags.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inovacc/orgclone/internal/git"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/ini.v1"
)

const (
	// DefaultConfigFile is read from the working directory unless --config is given
	DefaultConfigFile = "config.ini"

	// DefaultOutputDirectory is the destination root for clones
	DefaultOutputDirectory = "./cloned_repos"

	// DefaultRepoListFile holds one repository URL per line
	DefaultRepoListFile = "repos.txt"

	// DefaultTransport clones through the git binary
	DefaultTransport = git.TransportExec

	// DefaultParallel keeps processing strictly sequential
	DefaultParallel = 1

	// MaxParallel bounds the parallel setting
	MaxParallel = 10

	// EnvPrefix prefixes every environment override
	EnvPrefix = "ORGCLONE_"
)

// Config holds the settings of a batch run
type Config struct {
	// OutputDirectory is the root clones are grouped under, one folder per organization
	OutputDirectory string `ini:"output_directory"`

	// RepoListFile is the file listing repository URLs, one per line
	RepoListFile string `ini:"repo_list_file"`

	// Transport selects the clone implementation ("git" or "go-git")
	Transport string `ini:"transport"`

	// Parallel is the number of clones run at once
	Parallel int `ini:"parallel"`

	// Shallow clones with a history depth of one
	Shallow bool `ini:"shallow"`

	// History records each run in the history database
	History bool `ini:"history"`

	// Source is the config file the values were read from, empty when none was found
	Source string `ini:"-"`
}

// Default returns a Config with the documented defaults
func Default() Config {
	return Config{
		OutputDirectory: DefaultOutputDirectory,
		RepoListFile:    DefaultRepoListFile,
		Transport:       DefaultTransport,
		Parallel:        DefaultParallel,
		History:         true,
	}
}

// envOverrides mirrors Config for environment variables; nil means unset.
type envOverrides struct {
	OutputDirectory *string `env:"OUTPUT_DIRECTORY, noinit"`
	RepoListFile    *string `env:"REPO_LIST_FILE, noinit"`
	Transport       *string `env:"TRANSPORT, noinit"`
	Parallel        *int    `env:"PARALLEL, noinit"`
	Shallow         *bool   `env:"SHALLOW, noinit"`
	History         *bool   `env:"HISTORY, noinit"`
}

// Load reads path (missing files are ignored) and applies ORGCLONE_*
// environment overrides on top of it.
func Load(ctx context.Context, path string) (Config, error) {
	return LoadWith(ctx, path, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit environment lookuper
func LoadWith(ctx context.Context, path string, lookuper envconfig.Lookuper) (Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return Config{}, err
	}

	if err := cfg.loadEnv(ctx, lookuper); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	if path == "" {
		return nil
	}

	file, err := ini.LoadSources(ini.LoadOptions{Loose: true, InsensitiveKeys: true}, path)
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}

	section := file.Section(ini.DefaultSection)
	if len(section.Keys()) == 0 {
		return nil
	}

	if err := section.StrictMapTo(c); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	c.Source = path

	return nil
}

func (c *Config) loadEnv(ctx context.Context, lookuper envconfig.Lookuper) error {
	var env envOverrides

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookuper),
	}); err != nil {
		return fmt.Errorf("error reading environment: %w", err)
	}

	if env.OutputDirectory != nil {
		c.OutputDirectory = *env.OutputDirectory
	}

	if env.RepoListFile != nil {
		c.RepoListFile = *env.RepoListFile
	}

	if env.Transport != nil {
		c.Transport = *env.Transport
	}

	if env.Parallel != nil {
		c.Parallel = *env.Parallel
	}

	if env.Shallow != nil {
		c.Shallow = *env.Shallow
	}

	if env.History != nil {
		c.History = *env.History
	}

	return nil
}

// Validate checks the resolved settings
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.OutputDirectory) == "" {
		errs = append(errs, errors.New("output_directory must not be empty"))
	}

	if strings.TrimSpace(c.RepoListFile) == "" {
		errs = append(errs, errors.New("repo_list_file must not be empty"))
	}

	if _, ok := git.NormalizeTransport(c.Transport); !ok {
		errs = append(errs, fmt.Errorf("transport must be one of %s, got %q", strings.Join(git.Transports(), ", "), c.Transport))
	}

	if c.Parallel < 1 || c.Parallel > MaxParallel {
		errs = append(errs, fmt.Errorf("parallel must be between 1 and %d", MaxParallel))
	}

	return errors.Join(errs...)
}
