package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citemap/internal/geo"
	"github.com/pdiddy/citemap/internal/httputil"
	"github.com/pdiddy/citemap/internal/scholar"
	"github.com/pdiddy/citemap/internal/secrets"
	"github.com/pdiddy/citemap/pkg/types"
)

const defaultCachePath = "data/resolution_cache.json"

var resolveCmd = &cobra.Command{
	Use:   "resolve [affiliations-file]",
	Short: "Resolve affiliation strings to coordinates",
	Long: `Resolve runs every distinct affiliation string through the resolution
pipeline: alias table, then the persistent cache, then the Nominatim
geocoder. Outcomes land in the cache, so a second run costs no network
calls for already-seen affiliations.

By default affiliations come from the citations database built by fetch;
pass a file of one affiliation per line to resolve arbitrary strings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("cache", defaultCachePath, "resolution cache file")
	resolveCmd.Flags().String("aliases", "", "YAML file of extra institution aliases")
	resolveCmd.Flags().String("data-dir", defaultDataDir, "base directory for fetched data")
	resolveCmd.Flags().Duration("timeout", 10*time.Second, "HTTP request timeout")
	resolveCmd.Flags().Duration("delay", 1*time.Second, "delay between geocoding calls")
	resolveCmd.Flags().Int("max-attempts", 3, "geocoding attempts per query")
	resolveCmd.Flags().Bool("refresh-unresolved", false, "retry affiliations previously marked unresolved")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	fileCfg := pipelineConfig.Resolve

	userAgent := secrets.Get(loadedSecrets, "nominatim-user-agent")
	if userAgent == "" {
		userAgent = fileCfg.UserAgent
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	retryBase := fileCfg.RetryBaseDelay
	if retryBase == 0 {
		retryBase = 1 * time.Second
	}

	cfg := types.ResolveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   durationSetting(cmd, "timeout", fileCfg.Timeout),
			UserAgent: userAgent,
		},
		CachePath:      stringSetting(cmd, "cache", fileCfg.CachePath),
		AliasPath:      stringSetting(cmd, "aliases", fileCfg.AliasPath),
		MaxAttempts:    intSetting(cmd, "max-attempts", fileCfg.MaxAttempts),
		RetryBaseDelay: retryBase,
		RequestDelay:   durationSetting(cmd, "delay", fileCfg.RequestDelay),
	}

	dataDir := stringSetting(cmd, "data-dir", pipelineConfig.Fetch.DataDir)
	refresh, _ := cmd.Flags().GetBool("refresh-unresolved")

	var raws []string
	if len(args) == 1 {
		lines, err := readLines(args[0])
		if err != nil {
			return err
		}
		raws = lines
	} else {
		store, err := scholar.OpenStore(dataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		stored, _, err := store.Affiliations(cmd.Context())
		if err != nil {
			return err
		}
		raws = stored
	}
	if len(raws) == 0 {
		return fmt.Errorf("no affiliations to resolve: run fetch first or pass a file")
	}

	aliases, err := geo.LoadAliasTable(cfg.AliasPath)
	if err != nil {
		return err
	}

	cache, err := geo.OpenCache(cfg.CachePath)
	if err != nil {
		return err
	}
	if refresh {
		removed, err := cache.DeleteUnresolved()
		if err != nil {
			return err
		}
		if removed > 0 {
			fmt.Fprintf(os.Stdout, "cleared %d unresolved entries for retry\n", removed)
		}
	}

	resolver := &geo.Resolver{
		Aliases: aliases,
		Cache:   cache,
		Geocoder: &geo.Nominatim{
			Client:    &http.Client{Timeout: cfg.Timeout},
			UserAgent: cfg.UserAgent,
			Retry: httputil.Policy{
				MaxAttempts: cfg.MaxAttempts,
				BaseDelay:   cfg.RetryBaseDelay,
				Jitter:      0.1,
			},
		},
		Delay: cfg.RequestDelay,
	}

	_, _, err = resolver.Resolve(cmd.Context(), raws, os.Stdout)
	return err
}

// readLines reads one affiliation per line, skipping blanks.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading affiliations file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading affiliations file: %w", err)
	}
	return lines, nil
}
