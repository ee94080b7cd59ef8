package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"example.com/notes-api/internal/config"
	"example.com/notes-api/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or roll back the database schema",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(db.Up), string(db.Down)},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := db.ParseDirection(args[0])
		if err != nil {
			return err
		}
		cfg := config.Load()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
		if err := db.Migrate(cfg.DatabaseURL, dir); err != nil {
			return err
		}
		slog.Info("migrations done", "direction", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
