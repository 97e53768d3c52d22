package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mirror"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mirror",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mirror version %s\n", mirror.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
