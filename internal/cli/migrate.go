package cli

import (
	"fmt"
	"strconv"

	"github.com/banshee-data/faultskin/internal/db"
	"github.com/spf13/cobra"
)

// openForMigrate opens the database without migrating it, so the schema
// commands see its current state.
func openForMigrate(cmd *cobra.Command) (*db.DB, error) {
	path, err := OptionalStringFlag(cmd, "db")
	if err != nil {
		return nil, err
	}
	database, err := db.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

func printVersion(cmd *cobra.Command, database *db.DB) error {
	version, dirty, err := database.MigrateVersion(db.MigrationsFS())
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

func RunMigrateUp(cmd *cobra.Command, args []string) error {
	database, err := openForMigrate(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateUp(db.MigrationsFS()); err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return printVersion(cmd, database)
}

func RunMigrateDown(cmd *cobra.Command, args []string) error {
	database, err := openForMigrate(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateDown(db.MigrationsFS()); err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return printVersion(cmd, database)
}

func RunMigrateStatus(cmd *cobra.Command, args []string) error {
	database, err := openForMigrate(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	latest, err := db.LatestMigrationVersion(db.MigrationsFS())
	if err != nil {
		return err
	}
	version, dirty, err := database.MigrateVersion(db.MigrationsFS())
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "current version: %d\n", version)
	fmt.Fprintf(w, "latest version:  %d\n", latest)
	fmt.Fprintf(w, "dirty:           %v\n", dirty)
	if dirty {
		fmt.Fprintln(w, "a migration failed mid-execution; inspect the database, then run: faultskin migrate force <version>")
	} else if version < latest {
		fmt.Fprintf(w, "%d migration(s) pending; run: faultskin migrate up\n", latest-version)
	}
	return nil
}

func RunMigrateForce(cmd *cobra.Command, args []string) error {
	version, err := strconv.Atoi(args[0])
	if err != nil || version < 0 {
		return fmt.Errorf("invalid version number: %s", args[0])
	}

	database, err := openForMigrate(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateForce(db.MigrationsFS(), version); err != nil {
		return fmt.Errorf("migration force failed: %w", err)
	}
	return printVersion(cmd, database)
}
