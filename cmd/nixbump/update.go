package main

import (
	"github.com/fatih/color"
	"github.com/obentoo/nixbump/internal/common/git"
	"github.com/obentoo/nixbump/internal/common/github"
	"github.com/obentoo/nixbump/internal/common/logger"
	"github.com/obentoo/nixbump/internal/common/output"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [project] [version]",
	Short: "Write the version record and regenerate dependencies",
	Long: `Write the version record for a release and regenerate the dependency
manifests from it. The project defaults to the upstream of nixbump.toml and
the version to its latest release. An explicit version is recorded as given.

Nothing is committed; run "git status" or "nixbump check" afterwards.

Examples:
  nixbump update                          Record the latest release
  nixbump update apache/kvrocks v2.8.0    Record a specific tag`,
	Args: cobra.MaximumNArgs(2),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	e, err := newEnv(true)
	if err != nil {
		return err
	}

	repository := e.project.Upstream
	if len(args) > 0 && args[0] != "" {
		if _, _, err := github.ParseRepository(args[0]); err != nil {
			return err
		}
		repository = args[0]
	}
	explicit := ""
	if len(args) > 1 {
		explicit = args[1]
	}

	rec, err := e.updater(repository).Update(cmd.Context(), explicit)
	if err != nil {
		return err
	}
	output.PrintSuccess("%s at %s", repository, rec.Rev)

	// Show what the update touched; a failure here does not fail the update
	entries, err := e.git.Status(cmd.Context())
	if err != nil {
		logger.Debug("git status: %v", err)
		return nil
	}
	printStatus(entries)
	return nil
}

func printStatus(entries []git.StatusEntry) {
	if len(entries) == 0 {
		logger.Info("%s", output.Dim.Sprint("No changes"))
		return
	}
	logger.Info("%s", output.Header.Sprint("Changes:"))
	for _, entry := range entries {
		label := git.StatusLabel(entry.Status)
		logger.Info("  %s %s", statusColor(label).Sprintf("%-9s", label), entry.FilePath)
	}
}

func statusColor(label string) *color.Color {
	switch label {
	case "Added", "Untracked":
		return output.Success
	case "Modified", "Renamed":
		return output.Warning
	case "Deleted":
		return output.Error
	default:
		return output.Dim
	}
}
