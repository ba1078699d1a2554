package main

import (
	"fmt"
	"strings"

	"github.com/hackeddesign/claire"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of claire",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "claire version %s\n", strings.TrimSpace(claire.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
