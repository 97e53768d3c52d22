package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var readJSON bool

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Read a document",
	Long:  `Print a document's content, or the whole document as JSON with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := open()

		doc, err := svc.GetDocument(context.Background(), args[0])
		if err != nil {
			fatal("Error reading document", err)
		}
		if readJSON {
			printJSON(doc)
			return
		}
		fmt.Print(doc.Content)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}
