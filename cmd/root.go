package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "media-scraper",
	Short: "media-scraper organizes a personal media collection",
	Long: `media-scraper scans an inbox of freshly arrived media files, matches them
against the TMDB catalog, and reconciles them into a curated library layout
with sidecar metadata and artwork.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}

func initConfig() {
	viper.SetConfigFile(cfgFile)

	viper.SetEnvPrefix("MEDIA_SCRAPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	viper.SetDefault("tmdb.baseURL", tmdb.DefaultBaseURL)
	viper.SetDefault("tmdb.imageURL", tmdb.DefaultImageURL)
	viper.SetDefault("tmdb.apiKey", "")
	viper.SetDefault("tmdb.language", tmdb.DefaultLanguage)
	viper.SetDefault("tmdb.backoff", time.Millisecond*500)
	viper.SetDefault("tmdb.maxRetries", 3)

	viper.SetDefault("dify.baseURL", "")
	viper.SetDefault("dify.apiKey", "")

	viper.SetDefault("server.port", 3000)

	viper.SetDefault("library.inbox", "/media/Inbox")
	viper.SetDefault("library.tv", "/media/TV")
	viper.SetDefault("library.movies", "/media/Movies")

	viper.SetDefault("scraper.batchDelay", time.Millisecond*300)
	viper.SetDefault("scraper.keepRecentTasks", 50)
}
