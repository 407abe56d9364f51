package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/inovacc/orgclone/internal/application"
	"github.com/inovacc/orgclone/internal/cli"
	"github.com/inovacc/orgclone/internal/config"
	"github.com/inovacc/orgclone/internal/core"
	"github.com/inovacc/orgclone/internal/git"
	"github.com/inovacc/orgclone/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   application.AppName + " [url...]",
		Short: "Clone repositories into per-organization folders",
		Long: `Orgclone clones a list of Git repositories into a destination root,
placing each one under a folder named after the organization in its URL:

  https://github.com/kubernetes/kubectl -> <output>/kubernetes/kubectl

Repositories are read from the list file (one URL per line), or taken from
the command line when URLs are given as arguments. Every URL gets an outcome:
cloned, skipped when no organization can be determined, or failed. A failure
never stops the batch.

Settings are read from an INI file (DEFAULT section), then from ORGCLONE_*
environment variables, then from flags:

  output_directory = ./cloned_repos
  repo_list_file   = repos.txt
  transport        = git
  parallel         = 1
  shallow          = false
  history          = true

Examples:
  # Clone everything listed in repos.txt into ./cloned_repos
  orgclone

  # Clone two repositories into ~/src
  orgclone -o ~/src https://github.com/orgA/one git@github.com:orgB/two.git

  # Preview the destination folders without cloning
  orgclone --dry-run

  # Four clones at once with the in-process transport, JSON logs
  orgclone --parallel 4 --transport go-git --json`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE:         runBatch,
	}

	cmd.Flags().StringP("config", "c", config.DefaultConfigFile, "Path to the INI configuration file")
	config.BindFlags(cmd.Flags())

	// Operation mode
	cmd.Flags().Bool("dry-run", false, "Show where each repository would go without cloning")
	cmd.Flags().Bool("no-tui", false, "Print one line per repository instead of the progress view")

	// Logging
	cmd.Flags().String("log-level", "warn", "Log level: debug, info, warn, error")
	cmd.Flags().Bool("json", false, "Output logs in JSON format")

	cmd.AddCommand(newHistoryCmd(), newVersionCmd())

	return cmd
}

// Execute runs the root command, exiting with status 1 on error
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		out    = cmd.OutOrStdout()
		errOut = cmd.ErrOrStderr()
	)

	configPath, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noTUI, _ := cmd.Flags().GetBool("no-tui")
	logLevel, _ := cmd.Flags().GetString("log-level")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	logger := setupLogger(logLevel, jsonOutput, out, errOut)

	cfg, err := loadConfig(ctx, cmd, configPath)
	if err != nil {
		return err
	}

	root, err := expandPath(cfg.OutputDirectory)
	if err != nil {
		return fmt.Errorf("invalid output directory: %w", err)
	}

	urls := args
	if len(urls) == 0 {
		urls, err = config.ReadRepoList(cfg.RepoListFile)
		if err != nil {
			return fmt.Errorf("failed to read repository list: %w", err)
		}
	}

	logger.Debug("configuration loaded",
		slog.String("source", cfg.Source),
		slog.String("output_directory", root),
		slog.String("transport", cfg.Transport),
		slog.Int("parallel", cfg.Parallel),
		slog.Bool("shallow", cfg.Shallow),
	)

	if len(urls) == 0 {
		logger.Warn("no repositories to clone", slog.String("list", cfg.RepoListFile))
		_, _ = fmt.Fprintln(out, "No repositories to clone.")

		return nil
	}

	if dryRun {
		plan := core.Plan(urls, root)

		core.PrintPlan(out, root, plan)

		if jsonOutput {
			core.LogPlan(logger, root, plan)
		}

		return nil
	}

	unlock, err := acquireRunLock(logger)
	if err != nil {
		return err
	}
	defer unlock()

	transport, err := git.NewTransport(cfg.Transport, git.TransportOptions{Shallow: cfg.Shallow})
	if err != nil {
		return err
	}

	run := func(ctx context.Context, reporter core.Reporter) []core.Outcome {
		return core.NewOrchestrator(transport,
			core.WithLogger(logger),
			core.WithReporter(reporter),
			core.WithParallel(cfg.Parallel),
		).Run(ctx, urls, root)
	}

	startedAt := time.Now()

	var (
		outcomes []core.Outcome
		duration time.Duration
	)

	if !noTUI && !jsonOutput && isTerminal(out) {
		outcomes, duration, err = cli.RunBatch(ctx, root, len(urls), run, core.NewLineReporter(out))
		if err != nil {
			logger.Warn("progress view failed", slog.String("error", err.Error()))
		}
	} else {
		_, _ = fmt.Fprintf(out, "\nCloning %d repositories into %s (parallel: %d)...\n\n", len(urls), root, cfg.Parallel)

		outcomes = run(ctx, core.NewLineReporter(out))
		duration = time.Since(startedAt)
	}

	core.PrintSummary(out, outcomes, duration)

	if jsonOutput {
		core.LogSummary(logger, outcomes, duration)
	}

	if cfg.History {
		saveHistory(logger, store.NewRun(root, transport.Name(), cfg.Parallel, startedAt, duration, outcomes))
	}

	return nil
}

// loadConfig layers the config file, environment and explicit flags
func loadConfig(ctx context.Context, cmd *cobra.Command, path string) (config.Config, error) {
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// runLockPath locates the lock file held during a batch
var runLockPath = application.LockPath

// acquireRunLock prevents two batch runs from sharing the application directory.
// Only a lock held by another run is an error; when the lock file cannot be
// used at all the batch runs unlocked.
func acquireRunLock(logger *slog.Logger) (func(), error) {
	lockPath, err := runLockPath()
	if err != nil {
		logger.Warn("running without run lock", slog.String("error", err.Error()))
		return func() {}, nil
	}

	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		logger.Warn("running without run lock",
			slog.String("lock", lockPath),
			slog.String("error", err.Error()),
		)

		return func() {}, nil
	}

	if !ok {
		return nil, fmt.Errorf("another %s run is in progress (lock: %s)", application.AppName, lockPath)
	}

	return func() {
		_ = lock.Unlock()
	}, nil
}

// saveHistory records run; failures are logged only
func saveHistory(logger *slog.Logger, run *store.Run) {
	db, err := openHistory()
	if err != nil {
		logger.Warn("run history unavailable", slog.String("error", err.Error()))
		return
	}

	defer func() {
		_ = db.Close()
	}()

	if err := db.SaveRun(run); err != nil {
		logger.Warn("failed to save run history", slog.String("error", err.Error()))
		return
	}

	logger.Debug("run recorded", slog.String("id", run.ID))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}
