package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a scoped-bean and expression toolkit for server-rendered UIs",
	Long: `Arbor binds named attribute scopes, an expression language, and command
components together. This CLI evaluates expressions against seeded scopes
and runs the demo HTTP and MCP servers.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
