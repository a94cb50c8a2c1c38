package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mural/internal/config"
	"mural/internal/filter"
	"mural/internal/logging"
	"mural/internal/workshop"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Fetch and filter candidates without touching rotation state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			spec := filter.FromConfig(cfg.Filters)
			client := previewClient(cfg)

			var result workshop.FetchResult
			if client.HasKey() {
				queryType, days := workshop.MapSort(cfg.Sort.Method)
				req := workshop.FetchRequest{
					QueryType:     queryType,
					Days:          days,
					IncludeTags:   spec.IncludeQueryTags(),
					ExcludedTags:  spec.ExcludeQueryTags(),
					PageSize:      cfg.Filters.NumPerPage,
					MaxPages:      cfg.Filters.MaxPages,
					MinCandidates: cfg.Filters.MinCandidates,
				}
				result, err = client.FetchUnion(cmd.Context(), req, spec.Accept)
			} else {
				sort, days := workshop.MapBrowseSort(cfg.Sort.Method)
				req := workshop.BrowseRequest{
					Sort:          sort,
					Days:          days,
					IncludeTags:   spec.IncludeQueryTags(),
					ExcludedTags:  spec.ExcludeQueryTags(),
					PageSize:      cfg.Filters.NumPerPage,
					MaxPages:      cfg.Filters.MaxPages,
					MinCandidates: cfg.Filters.MinCandidates,
				}
				result, err = client.FetchBrowseUnion(cmd.Context(), req, spec.Accept)
			}
			if err != nil {
				return fmt.Errorf("fetch candidates: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d of %d fetched items pass the filters\n", len(result.IDs), result.Seen)
			if len(result.IDs) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(result.IDs))
			for i, id := range result.IDs {
				if limit > 0 && i >= limit {
					break
				}
				item := result.Details[id]
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					strconv.FormatUint(id, 10),
					truncate(item.Title, 40),
					strings.Join(item.TypeTags(), ","),
					item.AgeTag(),
					strings.Join(item.ResolutionStrings(), ","),
					strings.Join(item.GenreTags(3), ","),
				})
			}
			writeTable(out,
				[]string{"#", "ID", "Title", "Type", "Age", "Resolution", "Genres"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft})
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum number of candidates to display (0 for all)")
	return cmd
}

func previewClient(cfg *config.Config) *workshop.Client {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
	}
	if proxy := cfg.Network.HTTPSProxy; proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil {
			httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	return workshop.NewClient(cfg.Steam.APIKey, workshop.ClientOptions{
		HTTPClient:     httpClient,
		MaxTries:       cfg.Network.MaxRetries + 1,
		RequestsPerMin: cfg.Network.RateLimitPerMinute,
		Logger:         logging.NewNop(),
	})
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
