// Package nfo generates and reads the sidecar metadata files written next to
// organized media. Every generated file carries the generator signature so
// later scans can tell system-authored metadata from foreign files, and only
// signed files are ever regenerated.
package nfo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

// Generator is the signature embedded in every sidecar this system writes.
const Generator = "media-scraper-web"

const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

var signature = fmt.Sprintf("<generator>%s</generator>", Generator)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

var unescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

type builder struct {
	sb strings.Builder
}

func newBuilder(root string) *builder {
	b := &builder{}
	b.sb.WriteString(header)
	b.sb.WriteString("<" + root + ">\n")
	return b
}

func (b *builder) tag(name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(&b.sb, "  <%s>%s</%s>\n", name, escaper.Replace(value), name)
}

func (b *builder) intTag(name string, value int) {
	if value == 0 {
		return
	}
	b.tag(name, strconv.Itoa(value))
}

func (b *builder) ratingTag(value float64) {
	if value == 0 {
		return
	}
	b.tag("rating", strconv.FormatFloat(value, 'f', 1, 64))
}

func (b *builder) close(root string) []byte {
	b.sb.WriteString("  " + signature + "\n")
	b.sb.WriteString("</" + root + ">\n")
	return []byte(b.sb.String())
}

// GenerateShow renders the show-level tvshow.nfo.
func GenerateShow(d tmdb.ShowDetails) []byte {
	b := newBuilder("tvshow")
	b.tag("title", d.Name)
	b.tag("originaltitle", d.OriginalName)
	b.tag("plot", d.Overview)
	b.ratingTag(d.VoteAverage)
	b.intTag("year", d.Year())
	b.tag("premiered", d.FirstAirDate)
	b.tag("status", d.Status)
	for _, g := range d.Genres {
		b.tag("genre", g.Name)
	}
	b.intTag("season", d.NumberOfSeasons)
	b.intTag("tmdbid", d.ID)
	return b.close("tvshow")
}

// GenerateSeason renders a season.nfo.
func GenerateSeason(showID int, d tmdb.SeasonDetails) []byte {
	b := newBuilder("season")
	b.tag("title", d.Name)
	b.intTag("seasonnumber", d.SeasonNumber)
	b.tag("plot", d.Overview)
	b.tag("premiered", d.AirDate)
	b.intTag("tmdbid", showID)
	return b.close("season")
}

// GenerateEpisode renders an episode sidecar stored next to the video file.
func GenerateEpisode(d tmdb.EpisodeDetails) []byte {
	b := newBuilder("episodedetails")
	b.tag("title", d.Name)
	b.intTag("season", d.SeasonNumber)
	b.intTag("episode", d.EpisodeNumber)
	b.tag("plot", d.Overview)
	b.tag("aired", d.AirDate)
	b.ratingTag(d.VoteAverage)
	return b.close("episodedetails")
}

// GenerateMovie renders a movie sidecar stored next to the video file.
func GenerateMovie(d tmdb.MovieDetails) []byte {
	b := newBuilder("movie")
	b.tag("title", d.Title)
	b.tag("originaltitle", d.OriginalTitle)
	b.tag("plot", d.Overview)
	b.tag("tagline", d.Tagline)
	b.ratingTag(d.VoteAverage)
	b.intTag("runtime", d.Runtime)
	b.intTag("year", d.Year())
	b.tag("premiered", d.ReleaseDate)
	for _, g := range d.Genres {
		b.tag("genre", g.Name)
	}
	b.intTag("tmdbid", d.ID)
	return b.close("movie")
}

// IsGenerated reports whether sidecar content carries the generator signature.
func IsGenerated(content []byte) bool {
	return strings.Contains(string(content), signature)
}

// ExtractTag returns the decoded text of the first occurrence of a tag.
// Consumers must tolerate unknown and missing tags, so absence is just "".
func ExtractTag(content []byte, tag string) string {
	re := regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(tag) + `>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
	match := re.FindSubmatch(content)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(unescaper.Replace(string(match[1])))
}

// ExtractTMDBID returns the catalog id recorded in a sidecar, zero if absent.
func ExtractTMDBID(content []byte) int {
	id, err := strconv.Atoi(ExtractTag(content, "tmdbid"))
	if err != nil {
		return 0
	}
	return id
}

// Details is the subset of sidecar fields the asset-aware scans read back.
type Details struct {
	Overview string
	Tagline  string
	Status   string
	Rating   float64
	Runtime  int
	Year     int
}

// ReadDetails parses a sidecar's display fields. The year falls back to the
// premiered date when no year tag is present.
func ReadDetails(content []byte) Details {
	d := Details{
		Overview: ExtractTag(content, "plot"),
		Tagline:  ExtractTag(content, "tagline"),
		Status:   ExtractTag(content, "status"),
	}

	if v, err := strconv.ParseFloat(ExtractTag(content, "rating"), 64); err == nil {
		d.Rating = v
	}
	if v, err := strconv.Atoi(ExtractTag(content, "runtime")); err == nil {
		d.Runtime = v
	}
	if v, err := strconv.Atoi(ExtractTag(content, "year")); err == nil {
		d.Year = v
	} else if premiered := ExtractTag(content, "premiered"); len(premiered) >= 4 {
		if v, err := strconv.Atoi(premiered[:4]); err == nil {
			d.Year = v
		}
	}

	return d
}
