package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importKMLCmd = &cobra.Command{
	Use:   "import-kml <file>",
	Short: "Import course placemarks from a KML file",
	Long: `Create a course for every named Placemark in the file. Placemarks that
carry a Point also become pin locations of the new course.`,
	Example: `  caddy-cli import-kml ./courses.kml`,
	Args:    cobra.ExactArgs(1),
	RunE:    runImportKML,
}

func init() {
	rootCmd.AddCommand(importKMLCmd)
}

func runImportKML(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := courseService().ImportKML(cmd.Context(), f)
	if err != nil {
		if res != nil {
			logger.Warn().Int("courses", len(res.Courses)).Msg("kml import stopped part way")
		}
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	logger.Info().
		Int("courses", len(res.Courses)).
		Int("points", res.Points).
		Int("skipped", res.Skipped).
		Msg("kml imported")
	return nil
}
