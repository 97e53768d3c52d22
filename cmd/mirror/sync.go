package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mirror"
	"github.com/aretw0/mirror/pkg/core"
)

var syncJSON bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Load the directory and report what was found",
	Long: `Run one full sync pass against an empty index and print the result.
Files that fail to parse are listed with their error.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := open(mirror.WithBootstrap(false))

		report, err := svc.Sync(context.Background())
		if err != nil {
			fatal("Sync failed", err)
		}
		res := core.NewSyncResult(report)

		if syncJSON {
			printJSON(res)
			return
		}
		for _, path := range res.New {
			fmt.Println("loaded  ", path)
		}
		for _, f := range res.Skipped {
			fmt.Println("skipped ", f)
		}
		for _, f := range res.Failed {
			fmt.Printf("failed   %s: %s\n", f.File, f.Error)
		}
		if len(res.Failed) > 0 {
			os.Exit(2)
		}
	},
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("Error encoding JSON", err)
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Output in JSON format")
}
