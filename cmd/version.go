package cmd

import (
	"fmt"

	"github.com/inovacc/orgclone/internal/application"
	"github.com/inovacc/orgclone/internal/git"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, _ = fmt.Fprintf(out, "%s version %s\n", application.AppName, application.Version)

			gitVersion, err := git.NewClient().Version(cmd.Context())
			if err != nil {
				gitVersion = "git not available (" + err.Error() + ")"
			}

			_, _ = fmt.Fprintf(out, "%s\n", gitVersion)

			return nil
		},
	}
}
