package config

import (
	"path"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	TMDB    TMDB    `json:"tmdb" yaml:"tmdb" mapstructure:"tmdb"`
	Dify    Dify    `json:"dify" yaml:"dify" mapstructure:"dify"`
	Library Library `json:"library" yaml:"library" mapstructure:"library"`
	Server  Server  `json:"server" yaml:"server" mapstructure:"server"`
	Scraper Scraper `json:"scraper" yaml:"scraper" mapstructure:"scraper"`
}

type TMDB struct {
	BaseURL     string        `json:"baseURL" yaml:"baseURL" mapstructure:"baseURL"`
	ImageURL    string        `json:"imageURL" yaml:"imageURL" mapstructure:"imageURL"`
	APIKey      string        `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
	Language    string        `json:"language" yaml:"language" mapstructure:"language"`
	BaseBackoff time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff"`
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries" mapstructure:"maxRetries"`
}

// Dify configures the optional AI path-recognition workflow.
type Dify struct {
	BaseURL string `json:"baseURL" yaml:"baseURL" mapstructure:"baseURL"`
	APIKey  string `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
}

type Server struct {
	Port int `json:"port" yaml:"port" mapstructure:"port"`
}

// Library holds the three media roots. These are the protected directories
// that must never be deleted by source cleanup.
type Library struct {
	Inbox  string `json:"inbox" yaml:"inbox" mapstructure:"inbox"`
	TV     string `json:"tv" yaml:"tv" mapstructure:"tv"`
	Movies string `json:"movies" yaml:"movies" mapstructure:"movies"`
}

// ProtectedRoots returns the media roots in normalized form so they compare
// reliably against caller-supplied paths.
func (l Library) ProtectedRoots() []string {
	roots := []string{l.Inbox, l.TV, l.Movies}
	for i, r := range roots {
		roots[i] = NormalizePath(r)
	}
	return roots
}

// NormalizePath cleans a path: trailing slashes are stripped and dot
// segments resolved, so root prefix checks cannot be escaped with "..".
// Empty stays empty.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// Scraper houses reconciliation pipeline tuning.
type Scraper struct {
	BatchDelay      time.Duration `json:"batchDelay" yaml:"batchDelay" mapstructure:"batchDelay"`
	KeepRecentTasks int           `json:"keepRecentTasks" yaml:"keepRecentTasks" mapstructure:"keepRecentTasks"`
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}
