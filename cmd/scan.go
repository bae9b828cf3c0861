package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yfmeii/media-scraper-web/config"
	mediaio "github.com/yfmeii/media-scraper-web/pkg/io"
	"github.com/yfmeii/media-scraper-web/pkg/logger"
	"github.com/yfmeii/media-scraper-web/pkg/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "scan the media library",
	Long:  `scan the media library`,
}

var scanTVCmd = &cobra.Command{
	Use:   "tv",
	Short: "list shows in the tv library",
	Run: func(cmd *cobra.Command, args []string) {
		scn, ctx := newScanner()
		shows := scn.ScanShowsWithAssets(ctx)

		tw := newTableWriter()
		tw.AppendHeader(table.Row{"Show", "Year", "Seasons", "Episodes", "Status"})
		for _, show := range shows {
			episodes := 0
			for _, season := range show.Seasons {
				episodes += len(season.Episodes)
			}
			tw.AppendRow(table.Row{show.Name, yearCell(show.Year), len(show.Seasons), episodes, string(show.GroupStatus)})
		}
		fmt.Println(tw.Render())
	},
}

var scanMoviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "list movies in the library",
	Run: func(cmd *cobra.Command, args []string) {
		scn, ctx := newScanner()
		movies := scn.ScanMoviesWithAssets(ctx)

		tw := newTableWriter()
		tw.AppendHeader(table.Row{"Movie", "Year", "Size", "Scraped"})
		for _, movie := range movies {
			tw.AppendRow(table.Row{movie.Name, yearCell(movie.Year), humanize.IBytes(uint64(movie.File.Size)), movie.IsProcessed})
		}
		fmt.Println(tw.Render())
	},
}

var scanInboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "list unorganized inbox files",
	Run: func(cmd *cobra.Command, args []string) {
		scn, ctx := newScanner()
		files := scn.ScanInbox(ctx)

		tw := newTableWriter()
		tw.AppendHeader(table.Row{"File", "Kind", "Title", "Episode", "Size"})
		for _, file := range files {
			episode := ""
			if file.Parsed.Episode > 0 {
				episode = fmt.Sprintf("S%02dE%02d", file.Parsed.Season, file.Parsed.Episode)
			}
			tw.AppendRow(table.Row{file.RelativePath, string(file.Kind), file.Parsed.Title, episode, humanize.IBytes(uint64(file.Size))})
		}
		fmt.Println(tw.Render())
	},
}

var scanStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "summarize the library",
	Run: func(cmd *cobra.Command, args []string) {
		scn, ctx := newScanner()
		stats := scn.Stats(ctx)

		tw := newTableWriter()
		tw.AppendHeader(table.Row{"Metric", "Count"})
		tw.AppendRow(table.Row{"TV shows", stats.TVShows})
		tw.AppendRow(table.Row{"TV episodes", stats.TVEpisodes})
		tw.AppendRow(table.Row{"TV processed", stats.TVProcessed})
		tw.AppendRow(table.Row{"Movies", stats.Movies})
		tw.AppendRow(table.Row{"Movies processed", stats.MoviesProcessed})
		tw.AppendRow(table.Row{"Inbox files", stats.Inbox})
		fmt.Println(tw.Render())
	},
}

func newScanner() (*scanner.Scanner, context.Context) {
	log := logger.Get()

	cfg, err := config.New(viper.GetViper())
	if err != nil {
		log.Fatalw("failed to read configurations", "error", err)
	}

	ctx := logger.WithCtx(context.Background(), log)
	return scanner.New(&mediaio.MediaFileSystem{}, cfg.Library), ctx
}

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

func yearCell(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.AddCommand(scanTVCmd)
	scanCmd.AddCommand(scanMoviesCmd)
	scanCmd.AddCommand(scanInboxCmd)
	scanCmd.AddCommand(scanStatsCmd)
}
