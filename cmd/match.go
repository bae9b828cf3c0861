package cmd

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yfmeii/media-scraper-web/config"
	mediahttp "github.com/yfmeii/media-scraper-web/pkg/http"
	mediaio "github.com/yfmeii/media-scraper-web/pkg/io"
	"github.com/yfmeii/media-scraper-web/pkg/logger"
	"github.com/yfmeii/media-scraper-web/pkg/scraper"
	"github.com/yfmeii/media-scraper-web/pkg/tasks"
	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

// matchCmd auto-matches a file path against the catalog and prints the
// candidates without touching anything.
var matchCmd = &cobra.Command{
	Use:   "match <path>",
	Short: "match a file against the catalog",
	Long:  `match a file against the catalog and print the scored candidates`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatalw("failed to read configurations", "error", err)
		}

		kind, _ := cmd.Flags().GetString("kind")
		title, _ := cmd.Flags().GetString("title")
		year, _ := cmd.Flags().GetInt("year")

		httpClient := mediahttp.NewRateLimitedHTTPClient(
			mediahttp.WithMaxRetries(cfg.TMDB.MaxRetries),
			mediahttp.WithBaseBackoff(cfg.TMDB.BaseBackoff),
		)
		catalog := tmdb.New(cfg.TMDB.BaseURL, cfg.TMDB.APIKey,
			tmdb.WithLanguage(cfg.TMDB.Language),
			tmdb.WithImageBaseURL(cfg.TMDB.ImageURL),
			tmdb.WithHTTPClient(httpClient),
		)

		pipeline := scraper.New(&mediaio.MediaFileSystem{}, catalog, cfg.Library,
			tasks.NewRegistry(tasks.NewMemoryStore()), tasks.NewBus(),
			scraper.WithLanguage(cfg.TMDB.Language))

		ctx := logger.WithCtx(context.Background(), log)
		result, err := pipeline.AutoMatch(ctx, args[0], kind, title, year)
		if err != nil {
			log.Fatalw("match failed", "error", err)
		}

		fmt.Printf("query: %s", result.Title)
		if result.Year > 0 {
			fmt.Printf(" (%d)", result.Year)
		}
		fmt.Println()
		if result.Ambiguous {
			fmt.Println("ambiguous match, pick a candidate manually:")
		}

		tw := newTableWriter()
		tw.AppendHeader(table.Row{"ID", "Name", "Date", "Score"})
		for _, candidate := range result.Candidates {
			tw.AppendRow(table.Row{candidate.ID, candidate.Name, candidate.Date, fmt.Sprintf("%.2f", candidate.Score)})
		}
		fmt.Println(tw.Render())
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().String("kind", "", "tv or movie; empty searches both")
	matchCmd.Flags().String("title", "", "override the title parsed from the path")
	matchCmd.Flags().Int("year", 0, "override the year parsed from the path")
}
