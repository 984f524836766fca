package cli

import (
	"fmt"

	"github.com/banshee-data/faultskin/internal/version"
	"github.com/spf13/cobra"
)

func RunVersion(cmd *cobra.Command, args []string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
	return err
}
