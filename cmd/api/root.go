package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"example.com/notes-api/internal/config"
)

var (
	verbose   bool
	logFormat string
	envFiles  []string
)

var rootCmd = &cobra.Command{
	Use:           "notes-api",
	Short:         "Notes service with a sidebar query engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotenv(envFiles...); err != nil {
			return err
		}
		slog.SetDefault(newLogger(config.Load().LogLevel))
		return nil
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format: json or text")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load (default .env)")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(logFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
