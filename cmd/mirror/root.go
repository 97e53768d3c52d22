package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mirror"
	"github.com/aretw0/mirror/pkg/core"
)

var (
	verbose  bool
	rootFlag string
	readOnly bool
)

var rootCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Keep a document store and a directory of files in sync",
	Long: `Mirror loads a directory of Markdown, JSON, YAML and text files into a
document store and reconciles changes made on disk by other programs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Mirrored directory (default: nearest .mirror or mirror.yaml above the working directory)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Refuse writes and deletes")
}

// resolveRoot prefers --root, then the nearest marked directory.
func resolveRoot() (string, error) {
	if rootFlag != "" {
		return rootFlag, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return mirror.FindRoot(wd)
}

// open connects to an existing mirrored directory.
func open(opts ...mirror.Option) *core.Service {
	root, err := resolveRoot()
	if err != nil {
		fatal("Not a mirrored directory", err)
	}
	base := []mirror.Option{
		mirror.WithLogger(slog.Default()),
		mirror.WithMustExist(true),
	}
	// Only override mirror.yaml when the flag is given.
	if readOnly {
		base = append(base, mirror.WithReadOnly(true))
	}
	svc, err := mirror.New(root, append(base, opts...)...)
	if err != nil {
		fatal("Failed to open directory", err)
	}
	return svc
}
