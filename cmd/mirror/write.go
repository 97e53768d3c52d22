package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mirror/pkg/core"
)

var (
	writeID      string
	writeContent string
	writeMeta    []string
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Create or update a document",
	Long: `Write a document with the given ID. Content comes from --content or, when
the flag is absent, from standard input. Metadata is set with repeated --meta key=value.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		content := writeContent
		if !cmd.Flags().Changed("content") {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Failed to read stdin", err)
			}
			content = string(data)
		}

		meta, err := parseMeta(writeMeta)
		if err != nil {
			fatal("Invalid --meta", err)
		}

		svc := open()
		err = svc.SaveDocument(context.Background(), writeID, content, meta)
		if errors.Is(err, core.ErrStaleMetadata) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		} else if err != nil {
			fatal("Failed to save document", err)
		}
		fmt.Printf("Document '%s' saved.\n", writeID)
	},
}

func parseMeta(pairs []string) (core.Metadata, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(core.Metadata, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		meta[k] = v
	}
	return meta, nil
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().StringVar(&writeID, "id", "", "Document ID")
	writeCmd.Flags().StringVar(&writeContent, "content", "", "Document content")
	writeCmd.Flags().StringArrayVar(&writeMeta, "meta", nil, "Metadata key=value (repeatable)")
	_ = writeCmd.MarkFlagRequired("id")
}
