package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aretw0/mirror/pkg/core"
)

var (
	listJSON  bool
	filterTag string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := open()

		docs, err := svc.ListDocuments(context.Background())
		if err != nil {
			fatal("Error listing documents", err)
		}

		var filtered []core.Document
		for _, doc := range docs {
			if filterTag != "" && !hasTag(doc.Metadata, filterTag) {
				continue
			}
			filtered = append(filtered, doc)
		}

		if listJSON {
			printJSON(filtered)
			return
		}
		for _, doc := range filtered {
			fmt.Println(doc.ID)
		}
	},
}

// hasTag accepts tags decoded from YAML ([]any) or set in code ([]string).
func hasTag(meta core.Metadata, tag string) bool {
	switch t := meta["tags"].(type) {
	case []string:
		return slices.Contains(t, tag)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == tag {
				return true
			}
		}
	case string:
		return t == tag
	}
	return false
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&filterTag, "tag", "", "Filter documents by tag")
}
