package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mirror"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Mark a directory for mirroring",
	Long:  `Create the directory if needed and its .mirror system directory.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		target := rootFlag
		if target == "" {
			wd, err := os.Getwd()
			if err != nil {
				fatal("Failed to get CWD", err)
			}
			target = wd
		}

		root, err := mirror.Init(target)
		if err != nil {
			fatal("Failed to initialize", err)
		}
		fmt.Println("Initialized mirror in", root)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
