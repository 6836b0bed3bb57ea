package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of arbor",
	Run: func(cmd *cobra.Command, args []string) {
		info := arbor.Info()
		fmt.Printf("arbor version %s (contract %s)\n",
			info.ImplementationVersion, info.SpecificationVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
