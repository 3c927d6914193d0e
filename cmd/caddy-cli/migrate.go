package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"caddy/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded SQL migrations",
	Long: `Apply every embedded migration in name order. Statements are idempotent
(CREATE ... IF NOT EXISTS), so running migrate twice is safe.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	names, err := migrations.Names()
	if err != nil {
		return err
	}
	if err := migrations.Apply(cmd.Context(), db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, n := range names {
		logger.Info().Str("file", n).Msg("applied")
	}
	return nil
}
