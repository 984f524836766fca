package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/faultskin/internal/db"
	"github.com/banshee-data/faultskin/internal/fault/export"
	"github.com/banshee-data/faultskin/internal/fault/storage/sqlite"
	"github.com/spf13/cobra"
)

func openStore(cmd *cobra.Command) (*db.DB, *sqlite.SkinStore, error) {
	path, err := OptionalStringFlag(cmd, "db")
	if err != nil {
		return nil, nil, err
	}
	database, err := db.NewDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return database, sqlite.NewSkinStore(database.DB), nil
}

func RunRunsList(cmd *cobra.Command, args []string) error {
	database, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := store.ListRuns(commandContext(cmd))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs stored")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tSHAPE\tCELLS\tSKINS\tNOTE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%dx%dx%d\t%d\t%d\t%s\n",
			r.RunID, formatTime(r.CreatedAt), r.N1, r.N2, r.N3, r.CellCount, r.SkinCount, r.Note)
	}
	return tw.Flush()
}

func RunRunsShow(cmd *cobra.Command, args []string) error {
	database, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := commandContext(cmd)
	run, err := store.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	skins, err := store.ListSkins(ctx, run.RunID)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run:     %s\n", run.RunID)
	fmt.Fprintf(w, "created: %s\n", formatTime(run.CreatedAt))
	fmt.Fprintf(w, "shape:   %dx%dx%d\n", run.N1, run.N2, run.N3)
	fmt.Fprintf(w, "cells:   %d\n", run.CellCount)
	if run.Note != "" {
		fmt.Fprintf(w, "note:    %s\n", run.Note)
	}
	if len(run.ParamsJSON) > 0 {
		fmt.Fprintf(w, "params:  %s\n", run.ParamsJSON)
	}
	fmt.Fprintf(w, "skins:   %d\n", len(skins))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SKIN\tCELLS\tMEAN FL")
	for _, s := range skins {
		fmt.Fprintf(tw, "%d\t%d\t%.3f\n", s.SkinIndex, s.CellCount, s.MeanFl)
	}
	return tw.Flush()
}

func RunRunsDelete(cmd *cobra.Command, args []string) error {
	database, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := store.DeleteRun(commandContext(cmd), args[0]); err != nil {
		if errors.Is(err, sqlite.ErrRunNotFound) {
			return fmt.Errorf("run %s: %w", args[0], err)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted run %s\n", args[0])
	return nil
}

func RunRunsExport(cmd *cobra.Command, args []string) error {
	skinIndex, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid skin index %q: %w", args[1], err)
	}
	quadSize, err := cmd.Flags().GetFloat64("quad-size")
	if err != nil {
		return err
	}
	if quadSize <= 0 {
		return fmt.Errorf("--quad-size must be positive, got %g", quadSize)
	}
	path, err := OptionalStringFlag(cmd, "stl")
	if err != nil {
		return err
	}
	if path == "" {
		path = fmt.Sprintf("%s-%d.stl", args[0], skinIndex)
	}

	database, store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	pool, skin, err := store.LoadSkinCells(commandContext(cmd), args[0], skinIndex)
	if err != nil {
		return err
	}
	if err := export.SaveSTL(path, export.ToRenderMesh(pool, skin.Cells, quadSize)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote skin %d (%d cells) to %s\n", skinIndex, skin.Size(), path)
	return nil
}

func formatTime(unixNanos int64) string {
	return time.Unix(0, unixNanos).UTC().Format(time.RFC3339)
}
