package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "post-monitor",
	Short: "A CLI for the post price monitoring services",
	Long:  `Post monitor tracks trading posts against live prices and closes them when a target or stop loss is hit.
Use monitor-service to run the API and scheduled checks, and migrate to manage the database schema.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
