package main

import (
	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the Redis GEO index from stored locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := locationService().Reindex(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info().Int("points", n).Msg("geo index rebuilt")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
