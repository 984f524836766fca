package cli

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/banshee-data/faultskin/internal/config"
	"github.com/banshee-data/faultskin/internal/volume"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func addVolumeFlags(cmd *cobra.Command) {
	cmd.Flags().String("fl", "", "Fault likelihood volume (required)")
	cmd.Flags().String("fp", "", "Fault strike volume in degrees (required)")
	cmd.Flags().String("ft", "", "Fault dip volume in degrees (required)")
	cmd.Flags().Int("n1", 0, "Samples along the fast (depth) axis")
	cmd.Flags().Int("n2", 0, "Samples along the second axis")
	cmd.Flags().Int("n3", 0, "Samples along the slowest axis")
	cmd.Flags().String("byte-order", "", "Raw sample byte order: big|little (default: from config)")
	for _, name := range []string{"fl", "fp", "ft", "n1", "n2", "n3"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

// OptionalStringFlag returns the trimmed value of a string flag, or "" when
// the command does not define it.
func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

// loadTuning reads --config, falling back to the built-in defaults.
func loadTuning(cmd *cobra.Command) (*config.TuningConfig, error) {
	path, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

func parseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(s) {
	case "big", "be":
		return binary.BigEndian, nil
	case "little", "le":
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("invalid byte order %q: want big or little", s)
	}
}

type volumes struct {
	fl, fp, ft *volume.Volume
}

// loadVolumes reads the three input volumes concurrently.
func loadVolumes(cmd *cobra.Command, tuning *config.TuningConfig) (*volumes, error) {
	var dims [3]int
	for k, name := range []string{"n1", "n2", "n3"} {
		n, err := cmd.Flags().GetInt(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read --%s flag: %w", name, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("--%s must be positive, got %d", name, n)
		}
		dims[k] = n
	}

	orderName, err := OptionalStringFlag(cmd, "byte-order")
	if err != nil {
		return nil, err
	}
	if orderName == "" {
		orderName = tuning.GetByteOrder()
	}
	order, err := parseByteOrder(orderName)
	if err != nil {
		return nil, err
	}

	var v volumes
	targets := map[string]**volume.Volume{"fl": &v.fl, "fp": &v.fp, "ft": &v.ft}
	var g errgroup.Group
	for name, dst := range targets {
		path, err := OptionalStringFlag(cmd, name)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			vol, err := volume.ReadFile(path, dims[0], dims[1], dims[2], order)
			if err != nil {
				return fmt.Errorf("--%s: %w", name, err)
			}
			*dst = vol
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &v, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
