package main

import (
	"github.com/spf13/cobra"

	"catalog-matcher/internal/config"
)

func newRootCommand() *cobra.Command {
	cfg := config.Load()
	cfg.LogFile = ""

	rootCmd := &cobra.Command{
		Use:           "imagesync",
		Short:         "Attach image files to catalog records by file name",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also write logs to this rotating file")
	rootCmd.PersistentFlags().StringVar(&cfg.VocabularyFile, "vocabulary", cfg.VocabularyFile, "TOML vocabulary file (default: built-in)")

	rootCmd.AddCommand(newAssignCommand(&cfg))
	return rootCmd
}
