package main

import (
	"os"

	"github.com/banshee-data/faultskin/internal/cli"
	"github.com/banshee-data/faultskin/internal/version"
)

func main() {
	if err := cli.NewRootCommand(version.Version).Execute(); err != nil {
		os.Exit(1)
	}
}
