package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"caddy/internal/modules/course"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo courses and their hole pins",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	svc := courseService()
	for _, in := range course.Seeds() {
		c, err := svc.Create(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("seed %q: %w", in.Name, err)
		}
		logger.Info().Int64("course_id", c.ID).Str("name", c.Name).Int("holes", len(c.Holes)).Msg("seeded")
	}
	return nil
}
