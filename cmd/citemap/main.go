// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citemap CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citemap/internal/secrets"
	"github.com/pdiddy/citemap/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// pipelineConfig holds the settings read from the config file. Flags left
// at their defaults fall back to it.
var pipelineConfig types.PipelineConfig

// rootCmd is the base command for the citemap CLI.
var rootCmd = &cobra.Command{
	Use:   "citemap",
	Short: "Map where an author's citations come from",
	Long: `citemap builds a world-map dataset of citing institutions. It fetches an
author's citing papers from OpenAlex, resolves each citing author's
affiliation string to coordinates through an alias table, a persistent
cache, and the Nominatim geocoder, and aggregates the results into counted
map points.

Each stage is a subcommand: fetch, resolve, map, and review. Resolutions
are cached on disk, so repeated runs only geocode what is new.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citemap.yaml or ~/.config/citemap/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citemap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citemap"))
		}
	}

	viper.SetEnvPrefix("CITEMAP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
	pipelineConfig = loadPipelineConfig()
}

// loadPipelineConfig materializes the config-file settings. Keys absent
// from the file come back as zero values, which the flag fallbacks treat
// as unset.
func loadPipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("fetch.timeout"),
				UserAgent: viper.GetString("fetch.user_agent"),
			},
			AuthorID:     viper.GetString("fetch.author_id"),
			MaxWorks:     viper.GetInt("fetch.max_works"),
			Email:        viper.GetString("fetch.email"),
			RequestDelay: viper.GetDuration("fetch.request_delay"),
			DataDir:      viper.GetString("fetch.data_dir"),
		},
		Resolve: types.ResolveConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("resolve.timeout"),
				UserAgent: viper.GetString("resolve.user_agent"),
			},
			CachePath:      viper.GetString("resolve.cache_path"),
			AliasPath:      viper.GetString("resolve.alias_path"),
			MaxAttempts:    viper.GetInt("resolve.max_attempts"),
			RetryBaseDelay: viper.GetDuration("resolve.retry_base_delay"),
			RequestDelay:   viper.GetDuration("resolve.request_delay"),
		},
		Map: types.MapConfig{
			PointsPath:     viper.GetString("map.points_path"),
			UnresolvedPath: viper.GetString("map.unresolved_path"),
		},
	}
}

// stringSetting returns the flag value, preferring the config value when
// the flag was left untouched and the config carries one.
func stringSetting(cmd *cobra.Command, flag, cfgValue string) string {
	if !cmd.Flags().Changed(flag) && cfgValue != "" {
		return cfgValue
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func intSetting(cmd *cobra.Command, flag string, cfgValue int) int {
	if !cmd.Flags().Changed(flag) && cfgValue != 0 {
		return cfgValue
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

func durationSetting(cmd *cobra.Command, flag string, cfgValue time.Duration) time.Duration {
	if !cmd.Flags().Changed(flag) && cfgValue != 0 {
		return cfgValue
	}
	v, _ := cmd.Flags().GetDuration(flag)
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
