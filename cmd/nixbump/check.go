package main

import (
	"github.com/obentoo/nixbump/internal/bump"
	"github.com/obentoo/nixbump/internal/common/logger"
	"github.com/obentoo/nixbump/internal/common/output"
	"github.com/spf13/cobra"
)

var checkDryRun bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check upstream for a newer release and update to it",
	Long: `Fetch the latest upstream release and compare it with the version record.
If the release is newer, run the install command, update the version record,
regenerate the dependency manifests and commit the tracked changes with the
release tag as the message.

Examples:
  nixbump check             Check and apply a newer release
  nixbump check --dry-run   Only report whether an update is available`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "Report without installing, updating or committing")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := newEnv(false)
	if err != nil {
		return err
	}

	logger.Info("Checking %s...", output.Project.Sprint(e.project.Upstream))
	result, err := e.checker(checkDryRun).CheckAndUpdate(cmd.Context())
	if result != nil && result.Latest != "" {
		printCheckResult(result, err)
	}
	return err
}

func printCheckResult(result *bump.CheckResult, err error) {
	state := output.StateCurrent
	switch {
	case err != nil:
		state = output.StateFailed
	case result.Updated:
		state = output.StateUpdated
	case result.Newer:
		state = output.StateOutdated
	}

	to := ""
	if result.Newer {
		to = result.Latest
	}
	current := result.Current
	if current == "" {
		current = "?"
	}

	logger.Info("%s %s %s", output.FormatState(state), output.Project.Sprint(result.Repository),
		output.FormatTransition(current, to))
	if result.Newer && result.ReleaseURL != "" {
		logger.Info("  %s", output.Dim.Sprint(result.ReleaseURL))
	}
	if result.Newer && !result.Updated && checkDryRun {
		output.PrintInfo("Run without --dry-run to update to %s", result.Latest)
	}
}
