package cli

import (
	"fmt"

	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/banshee-data/faultskin/internal/fault/export"
	"github.com/banshee-data/faultskin/internal/fault/ridge"
	"github.com/spf13/cobra"
)

func RunDetect(cmd *cobra.Command, args []string) error {
	tuning, err := loadTuning(cmd)
	if err != nil {
		return err
	}
	vols, err := loadVolumes(cmd, tuning)
	if err != nil {
		return err
	}

	pool, err := ridge.DetectCells(commandContext(cmd), vols.fl, vols.fp, vols.ft, ridge.OptionsFromTuning(tuning))
	if err != nil {
		return fmt.Errorf("detect cells: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "detected %d cells in %dx%dx%d volume\n",
		pool.Len(), vols.fl.N1, vols.fl.N2, vols.fl.N3)

	stlPath, err := OptionalStringFlag(cmd, "stl")
	if err != nil {
		return err
	}
	if stlPath != "" {
		return writeSTL(cmd, stlPath, pool, pool.IDs())
	}
	return nil
}

func writeSTL(cmd *cobra.Command, path string, pool *fault.Pool, ids []fault.CellID) error {
	if len(ids) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no cells to write, skipping %s\n", path)
		return nil
	}
	if err := export.SaveSTL(path, export.ToRenderMesh(pool, ids, 1)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d cells to %s\n", len(ids), path)
	return nil
}
