package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citemap/internal/geo"
	"github.com/pdiddy/citemap/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Export and import resolution records for hand correction",
	Long: `Review materializes the resolution cache as CSV for editing in a
spreadsheet, and reads edited rows back. Imported rows override the
automatic resolution; clearing a row's status makes the next resolve run
look the affiliation up again.`,
}

var reviewExportCmd = &cobra.Command{
	Use:   "export [csv-file]",
	Short: "Write the resolution cache as CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReviewExport,
}

var reviewImportCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Apply edited CSV rows to the resolution cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewImport,
}

func init() {
	reviewCmd.PersistentFlags().String("cache", defaultCachePath, "resolution cache file")

	reviewCmd.AddCommand(reviewExportCmd)
	reviewCmd.AddCommand(reviewImportCmd)
	rootCmd.AddCommand(reviewCmd)
}

func runReviewExport(cmd *cobra.Command, args []string) error {
	cachePath, _ := cmd.Flags().GetString("cache")

	cache, err := geo.OpenCache(cachePath)
	if err != nil {
		return err
	}
	if cache.Len() == 0 {
		return fmt.Errorf("resolution cache %s is empty: run resolve first", cachePath)
	}

	out := os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating %s: %w", args[0], err)
		}
		defer f.Close()
		out = f
	}

	return review.Export(cache, out)
}

func runReviewImport(cmd *cobra.Command, args []string) error {
	cachePath, _ := cmd.Flags().GetString("cache")

	cache, err := geo.OpenCache(cachePath)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer f.Close()

	summary, err := review.Import(cache, f)
	if err != nil {
		return err
	}

	fmt.Printf("%d updated, %d cleared, %d unchanged\n",
		summary.Updated, summary.Cleared, summary.Skipped)
	return nil
}
