package nfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

func TestGenerateShowCarriesSignature(t *testing.T) {
	content := GenerateShow(tmdb.ShowDetails{
		ID:           123,
		Name:         "Test Show",
		Overview:     "Show overview",
		FirstAirDate: "2020-01-01",
		VoteAverage:  8,
	})

	s := string(content)
	assert.True(t, IsGenerated(content))
	assert.Contains(t, s, "<title>Test Show</title>")
	assert.Contains(t, s, "<plot>Show overview</plot>")
	assert.Contains(t, s, "<year>2020</year>")
	assert.Contains(t, s, "<tmdbid>123</tmdbid>")
}

func TestIsGeneratedRejectsForeignSidecar(t *testing.T) {
	foreign := []byte("<tvshow><title>Someone Else</title><generator>tinyMediaManager</generator></tvshow>")
	assert.False(t, IsGenerated(foreign))
}

func TestEscaping(t *testing.T) {
	content := GenerateMovie(tmdb.MovieDetails{
		ID:      1,
		Title:   `Fast & "Furious" <Reloaded>`,
		Tagline: "it's back",
	})

	s := string(content)
	assert.Contains(t, s, "<title>Fast &amp; &quot;Furious&quot; &lt;Reloaded&gt;</title>")
	assert.Contains(t, s, "<tagline>it&apos;s back</tagline>")
	assert.Equal(t, `Fast & "Furious" <Reloaded>`, ExtractTag(content, "title"))
}

func TestExtractTMDBID(t *testing.T) {
	content := GenerateShow(tmdb.ShowDetails{ID: 4242, Name: "Show"})
	assert.Equal(t, 4242, ExtractTMDBID(content))
	assert.Equal(t, 0, ExtractTMDBID([]byte("<tvshow><title>no id</title></tvshow>")))
}

func TestReadDetails(t *testing.T) {
	content := GenerateMovie(tmdb.MovieDetails{
		ID:          9,
		Title:       "Movie",
		Overview:    "A movie overview",
		Tagline:     "tag line",
		VoteAverage: 7.4,
		Runtime:     120,
		ReleaseDate: "2019-05-01",
	})

	d := ReadDetails(content)
	assert.Equal(t, "A movie overview", d.Overview)
	assert.Equal(t, "tag line", d.Tagline)
	assert.InDelta(t, 7.4, d.Rating, 1e-9)
	assert.Equal(t, 120, d.Runtime)
	assert.Equal(t, 2019, d.Year)
}

func TestReadDetailsYearFallsBackToPremiered(t *testing.T) {
	content := []byte(strings.Join([]string{
		"<tvshow>",
		"<plot>overview</plot>",
		"<premiered>2016-09-13</premiered>",
		"</tvshow>",
	}, "\n"))

	assert.Equal(t, 2016, ReadDetails(content).Year)
}

func TestGenerateEpisode(t *testing.T) {
	content := GenerateEpisode(tmdb.EpisodeDetails{
		Name:          "Pilot",
		SeasonNumber:  1,
		EpisodeNumber: 1,
		Overview:      "Episode overview",
		AirDate:       "2020-01-01",
		VoteAverage:   8,
	})

	s := string(content)
	assert.Contains(t, s, "<episodedetails>")
	assert.Contains(t, s, "<season>1</season>")
	assert.Contains(t, s, "<episode>1</episode>")
	assert.True(t, IsGenerated(content))
}
