package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mirror"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the files a sync would pick up",
	Long:  `Scan the directory and print the files a sync would load, without parsing them.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := open(mirror.WithBootstrap(false))

		diff, err := svc.Changes(context.Background())
		if err != nil {
			fatal("Scan failed", err)
		}
		if statusJSON {
			printJSON(diff)
			return
		}
		for _, p := range diff.Created {
			fmt.Println("new     ", p)
		}
		fmt.Printf("%d file(s)\n", len(diff.Created))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
}
