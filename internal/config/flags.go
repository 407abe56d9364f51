package config

import (
	"github.com/spf13/pflag"
)

// Flag names bound by BindFlags
const (
	FlagOutput    = "output"
	FlagList      = "list"
	FlagTransport = "transport"
	FlagParallel  = "parallel"
	FlagShallow   = "shallow"
	FlagNoHistory = "no-history"
)

// BindFlags registers the flags that can override file and environment settings
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagOutput, "o", DefaultOutputDirectory, "Destination root for clones (output_directory)")
	fs.StringP(FlagList, "l", DefaultRepoListFile, "File with one repository URL per line (repo_list_file)")
	fs.String(FlagTransport, DefaultTransport, "Clone transport: git or go-git")
	fs.IntP(FlagParallel, "p", DefaultParallel, "Number of concurrent clones (1-10)")
	fs.Bool(FlagShallow, false, "Shallow clone (--depth 1)")
	fs.Bool(FlagNoHistory, false, "Do not record this run in the history database")
}

// ApplyFlags copies explicitly set flags onto c. Flags left at their default
// do not override values from the file or the environment.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	if fs.Changed(FlagOutput) {
		v, err := fs.GetString(FlagOutput)
		if err != nil {
			return err
		}

		c.OutputDirectory = v
	}

	if fs.Changed(FlagList) {
		v, err := fs.GetString(FlagList)
		if err != nil {
			return err
		}

		c.RepoListFile = v
	}

	if fs.Changed(FlagTransport) {
		v, err := fs.GetString(FlagTransport)
		if err != nil {
			return err
		}

		c.Transport = v
	}

	if fs.Changed(FlagParallel) {
		v, err := fs.GetInt(FlagParallel)
		if err != nil {
			return err
		}

		c.Parallel = v
	}

	if fs.Changed(FlagShallow) {
		v, err := fs.GetBool(FlagShallow)
		if err != nil {
			return err
		}

		c.Shallow = v
	}

	if fs.Changed(FlagNoHistory) {
		v, err := fs.GetBool(FlagNoHistory)
		if err != nil {
			return err
		}

		c.History = !v
	}

	return nil
}
