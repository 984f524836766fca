// Package cli implements the faultskin command line.
package cli

import (
	"github.com/banshee-data/faultskin/internal/monitoring"
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "faultskin",
		Short: "Extract fault skins from fault likelihood volumes",
		Long: `Faultskin detects fault cells on ridges of a fault likelihood volume
and links them into skins: connected surfaces of cells with consistent
strike, dip and throw.

Volumes are raw float32 files laid out with i1 fastest, then i2, then i3.
Results can be stored in a SQLite database and exported as STL meshes,
PNG plots or an HTML report.`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			monitoring.SetLogger(nil)
		}
	}
	rootCmd.PersistentFlags().String("config", "", "Tuning config JSON (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress diagnostic logging")

	// Pipeline Commands
	detectCmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect fault cells and report how many were found",
		RunE:  RunDetect,
	}
	addVolumeFlags(detectCmd)
	detectCmd.Flags().String("stl", "", "Write every detected cell as a quad to this STL file")

	growCmd := &cobra.Command{
		Use:   "grow",
		Short: "Detect cells and grow them into fault skins",
		RunE:  RunGrow,
	}
	addVolumeFlags(growCmd)
	growCmd.Flags().String("db", "", "Store the run in this SQLite database")
	growCmd.Flags().String("note", "", "Free-text note stored with the run")
	growCmd.Flags().Int("min-size", 0, "Override min_skin_size")
	growCmd.Flags().Bool("no-recovery", false, "Disable stall recovery")
	growCmd.Flags().String("plot-dir", "", "Write PNG plots of the skins to this directory")
	growCmd.Flags().String("html", "", "Write an HTML report to this file")
	growCmd.Flags().String("stl", "", "Write all skin cells to this STL file")
	growCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	// Storage Commands
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored growth runs",
	}
	runsCmd.PersistentFlags().String("db", "faultskin.db", "SQLite database path")

	runsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE:  RunRunsList,
	}
	runsShowCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its skins",
		Args:  cobra.ExactArgs(1),
		RunE:  RunRunsShow,
	}
	runsDeleteCmd := &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a run with its skins and cells",
		Args:  cobra.ExactArgs(1),
		RunE:  RunRunsDelete,
	}
	runsExportCmd := &cobra.Command{
		Use:   "export <run-id> <skin-index>",
		Short: "Export one stored skin as an STL mesh",
		Args:  cobra.ExactArgs(2),
		RunE:  RunRunsExport,
	}
	runsExportCmd.Flags().String("stl", "", "Output STL path (default: <run-id>-<skin-index>.stl)")
	runsExportCmd.Flags().Float64("quad-size", 1, "Side of each cell quad in samples")
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd, runsExportCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	migrateCmd.PersistentFlags().String("db", "faultskin.db", "SQLite database path")
	migrateCmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: RunMigrateUp},
		&cobra.Command{Use: "down", Short: "Roll back one migration", Args: cobra.NoArgs, RunE: RunMigrateDown},
		&cobra.Command{Use: "status", Short: "Show the schema version", Args: cobra.NoArgs, RunE: RunMigrateStatus},
		&cobra.Command{Use: "force <version>", Short: "Set the schema version without migrating", Args: cobra.ExactArgs(1), RunE: RunMigrateForce},
	)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE:  RunVersion,
	}

	rootCmd.AddCommand(detectCmd, growCmd, runsCmd, migrateCmd, versionCmd)
	return rootCmd
}
