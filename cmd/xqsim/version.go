package main

import (
	"fmt"

	"github.com/spf13/cobra"

	xqsim "github.com/seitsubo413/XQsim-library"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of xqsim",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("xqsim version %s\n", xqsim.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
