package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/obentoo/nixbump/internal/common/logger"
	"github.com/obentoo/nixbump/internal/common/output"
	"github.com/obentoo/nixbump/internal/regen"
	"github.com/spf13/cobra"
)

var regenCmd = &cobra.Command{
	Use:   "regen",
	Short: "Regenerate the dependency manifests from the version record",
	Long: `Regenerate dep.json and sha.json from the upstream source at the revision in
the version record. Pins whose revision did not change are reused. When
[regen] command is set in nixbump.toml that command is run instead.`,
	Args: cobra.NoArgs,
	RunE: runRegen,
}

func init() {
	rootCmd.AddCommand(regenCmd)
}

func runRegen(cmd *cobra.Command, args []string) error {
	e, err := newEnv(true)
	if err != nil {
		return err
	}

	builtin, ok := e.regenerator.(*regen.Builtin)
	if !ok {
		return e.regenerator.Regenerate(cmd.Context(), e.root)
	}

	result, err := builtin.Run(cmd.Context(), e.root)
	if err != nil {
		return err
	}

	output.PrintSuccess("%d dependencies for %s", result.Deps, result.Rev)
	printNames("reused", output.Dim, result.Reused)
	printNames("fetched", output.Updated, result.Fetched)
	printNames("failed", output.Failed, result.Failed)
	if len(result.Failed) > 0 {
		output.PrintWarning("%d dependencies could not be pinned and were left out", len(result.Failed))
	}
	return nil
}

func printNames(label string, c *color.Color, names []string) {
	if len(names) == 0 {
		return
	}
	logger.Info("  %s %s", c.Sprintf("%-8s", label), strings.Join(names, ", "))
}
