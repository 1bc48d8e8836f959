package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citemap/internal/httputil"
	"github.com/pdiddy/citemap/internal/scholar"
	"github.com/pdiddy/citemap/internal/secrets"
	"github.com/pdiddy/citemap/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "citemap/0.1"
	defaultDataDir   = "data"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch an author's citing papers and affiliations",
	Long: `Fetch pulls the author's top-cited works from OpenAlex, pages through
the papers citing each one, and stores citing papers with their authors'
raw affiliation strings in the local citations database.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("author-id", "", "OpenAlex author ID (e.g. A5023888391)")
	fetchCmd.Flags().Int("max-works", 4, "number of top-cited works to fetch citations for")
	fetchCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	fetchCmd.Flags().Duration("delay", 200*time.Millisecond, "delay between consecutive API calls")
	fetchCmd.Flags().String("data-dir", defaultDataDir, "base directory for fetched data")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	fileCfg := pipelineConfig.Fetch

	authorID, _ := cmd.Flags().GetString("author-id")
	if authorID == "" {
		authorID = fileCfg.AuthorID
	}
	if authorID == "" {
		return fmt.Errorf("provide an OpenAlex author ID via --author-id or fetch.author_id in the config")
	}

	email := secrets.Get(loadedSecrets, "openalex-email")
	if email == "" {
		email = fileCfg.Email
	}

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   durationSetting(cmd, "timeout", fileCfg.Timeout),
			UserAgent: defaultUserAgent,
		},
		AuthorID:     authorID,
		MaxWorks:     intSetting(cmd, "max-works", fileCfg.MaxWorks),
		Email:        email,
		RequestDelay: durationSetting(cmd, "delay", fileCfg.RequestDelay),
		DataDir:      stringSetting(cmd, "data-dir", fileCfg.DataDir),
	}

	store, err := scholar.OpenStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	client := &scholar.Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		Email:     cfg.Email,
		UserAgent: cfg.UserAgent,
		Retry:     httputil.DefaultPolicy(),
	}

	result, err := scholar.Fetch(cmd.Context(), client, store, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d work(s) failed citation fetch", result.Failed)
	}
	return nil
}
