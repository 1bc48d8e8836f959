package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citemap/internal/geo"
	"github.com/pdiddy/citemap/internal/mapdata"
	"github.com/pdiddy/citemap/internal/scholar"
	"github.com/pdiddy/citemap/pkg/types"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Aggregate resolved affiliations into map points",
	Long: `Map groups the resolved affiliations by canonical location, counts the
citing-author affiliations behind each, and writes the point dataset as
GeoJSON plus a list of unresolved affiliations for review. Counts weight
each affiliation by how often it occurs across citing papers.`,
	RunE: runMap,
}

func init() {
	mapCmd.Flags().String("cache", defaultCachePath, "resolution cache file")
	mapCmd.Flags().String("data-dir", defaultDataDir, "base directory for fetched data")
	mapCmd.Flags().String("points", "output/points.geojson", "output path for the points GeoJSON")
	mapCmd.Flags().String("unresolved", "output/unresolved.txt", "output path for the unresolved list")

	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	cfg := types.MapConfig{
		PointsPath:     stringSetting(cmd, "points", pipelineConfig.Map.PointsPath),
		UnresolvedPath: stringSetting(cmd, "unresolved", pipelineConfig.Map.UnresolvedPath),
	}
	cachePath := stringSetting(cmd, "cache", pipelineConfig.Resolve.CachePath)
	dataDir := stringSetting(cmd, "data-dir", pipelineConfig.Fetch.DataDir)

	store, err := scholar.OpenStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	raws, weights, err := store.Affiliations(cmd.Context())
	if err != nil {
		return err
	}
	if len(raws) == 0 {
		return fmt.Errorf("no affiliations in the citations database: run fetch first")
	}

	cache, err := geo.OpenCache(cachePath)
	if err != nil {
		return err
	}

	// Build the raw → record view from the cache; affiliations never
	// resolved yet count as unresolved until a resolve run handles them.
	records := make(map[string]types.ResolutionRecord, len(raws))
	for _, raw := range raws {
		if rec, ok := cache.Get(geo.Normalize(raw)); ok {
			records[raw] = rec
		} else {
			records[raw] = types.ResolutionRecord{
				Key:    geo.Normalize(raw),
				Raw:    raw,
				Status: types.StatusUnresolved,
			}
		}
	}

	points, unresolved := geo.Aggregate(records, weights)

	if err := writePoints(points, cfg.PointsPath); err != nil {
		return err
	}
	if err := writeUnresolvedFile(unresolved, cfg.UnresolvedPath); err != nil {
		return err
	}

	mapdata.FormatTable(points, unresolved, os.Stdout)
	fmt.Fprintf(os.Stdout, "\npoints: %s\n", cfg.PointsPath)
	if len(unresolved) > 0 {
		fmt.Fprintf(os.Stdout, "unresolved: %s\n", cfg.UnresolvedPath)
	}
	return nil
}

func writePoints(points []types.Point, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := mapdata.WriteGeoJSON(points, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func writeUnresolvedFile(unresolved []string, path string) error {
	if len(unresolved) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := mapdata.WriteUnresolved(unresolved, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
