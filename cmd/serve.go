package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yfmeii/media-scraper-web/config"
	"github.com/yfmeii/media-scraper-web/pkg/dify"
	mediahttp "github.com/yfmeii/media-scraper-web/pkg/http"
	mediaio "github.com/yfmeii/media-scraper-web/pkg/io"
	"github.com/yfmeii/media-scraper-web/pkg/logger"
	"github.com/yfmeii/media-scraper-web/pkg/scraper"
	"github.com/yfmeii/media-scraper-web/pkg/tasks"
	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
	"github.com/yfmeii/media-scraper-web/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the scraper api server",
	Long:  `start the scraper api server`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatalw("failed to read configurations", "error", err)
		}

		httpClient := mediahttp.NewRateLimitedHTTPClient(
			mediahttp.WithMaxRetries(cfg.TMDB.MaxRetries),
			mediahttp.WithBaseBackoff(cfg.TMDB.BaseBackoff),
		)

		catalog := tmdb.New(cfg.TMDB.BaseURL, cfg.TMDB.APIKey,
			tmdb.WithLanguage(cfg.TMDB.Language),
			tmdb.WithImageBaseURL(cfg.TMDB.ImageURL),
			tmdb.WithHTTPClient(httpClient),
		)

		recognizer := dify.New(cfg.Dify.BaseURL, cfg.Dify.APIKey, catalog,
			dify.WithLanguage(cfg.TMDB.Language),
			dify.WithHTTPClient(httpClient),
		)

		fs := &mediaio.MediaFileSystem{}
		registry := tasks.NewRegistry(tasks.NewMemoryStore(), tasks.WithKeepRecent(cfg.Scraper.KeepRecentTasks))
		bus := tasks.NewBus()

		scraperOpts := []scraper.Option{scraper.WithLanguage(cfg.TMDB.Language)}
		if cfg.Scraper.BatchDelay > 0 {
			scraperOpts = append(scraperOpts, scraper.WithBatchDelay(cfg.Scraper.BatchDelay))
		}
		pipeline := scraper.New(fs, catalog, cfg.Library, registry, bus, scraperOpts...)

		srv := server.New(log, cfg.Library, fs, catalog, pipeline, registry, bus, recognizer)
		log.Error(srv.Serve(cfg.Server.Port))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
