package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/banshee-data/faultskin/internal/config"
	"github.com/banshee-data/faultskin/internal/db"
	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/banshee-data/faultskin/internal/fault/grow"
	"github.com/banshee-data/faultskin/internal/fault/report"
	"github.com/banshee-data/faultskin/internal/fault/ridge"
	"github.com/banshee-data/faultskin/internal/fault/storage/sqlite"
	"github.com/spf13/cobra"
)

type growSummary struct {
	RunID   string         `json:"run_id,omitempty"`
	Cells   int            `json:"cells"`
	Stats   grow.Stats     `json:"stats"`
	Summary report.Summary `json:"summary"`
}

func RunGrow(cmd *cobra.Command, args []string) error {
	tuning, err := loadTuning(cmd)
	if err != nil {
		return err
	}
	if err := applyGrowOverrides(cmd, tuning); err != nil {
		return err
	}
	vols, err := loadVolumes(cmd, tuning)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	pool, err := ridge.DetectCells(ctx, vols.fl, vols.fp, vols.ft, ridge.OptionsFromTuning(tuning))
	if err != nil {
		return fmt.Errorf("detect cells: %w", err)
	}
	detected := pool.Len()

	res, err := grow.Grow(ctx, pool, vols.fl, grow.ConfigFromTuning(tuning))
	if err != nil {
		return fmt.Errorf("grow skins: %w", err)
	}

	out := growSummary{
		Cells:   detected,
		Stats:   res.Stats,
		Summary: report.Summarize(pool, res.Skins),
	}

	dbPath, _ := OptionalStringFlag(cmd, "db")
	if dbPath != "" {
		note, _ := OptionalStringFlag(cmd, "note")
		runID, err := saveRun(ctx, dbPath, tuning, vols, note, pool, res.Skins)
		if err != nil {
			return err
		}
		out.RunID = runID
	}

	if err := writeGrowOutputs(cmd, pool, res.Skins, out.Summary); err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printGrowSummary(cmd, out)
	return nil
}

// applyGrowOverrides folds command line overrides into tuning so the stored
// parameters match what was run.
func applyGrowOverrides(cmd *cobra.Command, tuning *config.TuningConfig) error {
	if cmd.Flags().Changed("min-size") {
		n, err := cmd.Flags().GetInt("min-size")
		if err != nil {
			return err
		}
		tuning.MinSkinSize = &n
	}
	if noRecovery, _ := cmd.Flags().GetBool("no-recovery"); noRecovery {
		off := false
		tuning.Recovery = &off
	}
	return tuning.Validate()
}

func saveRun(ctx context.Context, path string, tuning *config.TuningConfig, vols *volumes, note string, pool *fault.Pool, skins []*fault.Skin) (string, error) {
	database, err := db.NewDB(path)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	params, err := json.Marshal(tuning)
	if err != nil {
		return "", fmt.Errorf("encode parameters: %w", err)
	}
	run := &sqlite.Run{
		N1:         vols.fl.N1,
		N2:         vols.fl.N2,
		N3:         vols.fl.N3,
		ParamsJSON: params,
		Note:       note,
	}
	if err := sqlite.NewSkinStore(database.DB).SaveRun(ctx, run, pool, skins); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return run.RunID, nil
}

func writeGrowOutputs(cmd *cobra.Command, pool *fault.Pool, skins []*fault.Skin, s report.Summary) error {
	w := cmd.OutOrStdout()

	if dir, _ := OptionalStringFlag(cmd, "plot-dir"); dir != "" {
		p, err := report.NewPlotter(dir)
		if err != nil {
			return err
		}
		if len(skins) > 0 {
			hist, err := p.SizeHistogram(s)
			if err != nil {
				return err
			}
			plan, err := p.PlanView(pool, skins)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "wrote %s and %s\n", hist, plan)
		}
	}

	if path, _ := OptionalStringFlag(cmd, "html"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := report.WriteHTML(f, "Fault skins", pool, skins); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote %s\n", path)
	}

	if path, _ := OptionalStringFlag(cmd, "stl"); path != "" {
		return writeSTL(cmd, path, pool, fault.SkinCells(skins))
	}
	return nil
}

func printGrowSummary(cmd *cobra.Command, out growSummary) {
	w := cmd.OutOrStdout()
	if out.RunID != "" {
		fmt.Fprintf(w, "run %s\n", out.RunID)
	}
	fmt.Fprintf(w, "cells detected: %d, re-detected: %d\n", out.Cells, out.Stats.Redetected)
	fmt.Fprintf(w, "skins: %d retained of %d grown, %d cells\n",
		out.Stats.SkinsRetained, out.Stats.SkinsGrown, out.Stats.CellsInSkins)
	if out.Summary.Skins > 0 {
		fmt.Fprintf(w, "skin size: min %d, max %d, mean %.1f, std %.1f; mean fl %.3f\n",
			out.Summary.MinSize, out.Summary.MaxSize, out.Summary.MeanSize, out.Summary.StdSize, out.Summary.MeanFl)
	}
}
