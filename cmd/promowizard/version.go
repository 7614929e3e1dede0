package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/promowizard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of promowizard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "promowizard version %s\n", strings.TrimSpace(promowizard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
