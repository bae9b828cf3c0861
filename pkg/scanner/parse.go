package scanner

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Tag vocabularies recognized while building a title from filename tokens.
// Resolution tags stop the title scan; source and codec tags are captured as
// side fields and skipped; audio tags are skipped outright.
var (
	resolutionTags = tagSet("2160p", "1080p", "720p", "480p", "4k", "8k")
	sourceTags     = tagSet("bluray", "blu-ray", "bdrip", "remux", "web-dl", "webrip", "hdtv", "dvdrip", "atvp", "dsnp", "nf")
	codecTags      = tagSet("x265", "h265", "hevc", "x264", "h264", "avc")
	audioTags      = tagSet("ddp", "ddp5.1", "ddp7.1", "dts", "truehd", "atmos", "aac", "flac", "ac3")
)

func tagSet(tags ...string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}

// Episode patterns, tried in priority order. First match wins.
var (
	seasonEpisodeRe = regexp.MustCompile(`(?i)s(\d{1,2})e(\d{1,3})(?:e(\d{1,3}))?`)
	crossEpisodeRe  = regexp.MustCompile(`(?i)(\d{1,2})x(\d{1,3})`)
	bareEpisodeRe   = regexp.MustCompile(`(?i)\b(?:ep|e)(\d{1,3})`)
	cjkEpisodeRe    = regexp.MustCompile(`第\s*(\d{1,3})\s*[集话話]`)
)

// Tokens that terminate the title scan.
var (
	stopSeasonEpisodeRe = regexp.MustCompile(`^(?i)s\d{1,2}e\d{1,3}`)
	stopCrossRe         = regexp.MustCompile(`^(?i)\d{1,2}x\d{1,3}$`)
	stopBareEpisodeRe   = regexp.MustCompile(`^(?i)(?:ep|e)\d{1,3}$`)
	stopCJKEpisodeRe    = regexp.MustCompile(`^第\s*\d{1,3}\s*[集话話]`)

	numericBasenameRe = regexp.MustCompile(`^(\d{1,3})$`)
	episodeBasenameRe = regexp.MustCompile(`^(?i)ep?(\d{1,3})$`)
)

var tokenSeparators = ".-_[](){} "

// ParsedInfo is metadata inferred from a filename alone. It is recomputed on
// every scan and never persisted. Zero values mean the field is absent.
type ParsedInfo struct {
	Title      string `json:"title"`
	Year       int    `json:"year,omitempty"`
	Season     int    `json:"season,omitempty"`
	Episode    int    `json:"episode,omitempty"`
	EpisodeEnd int    `json:"episodeEnd,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Source     string `json:"source,omitempty"`
	Codec      string `json:"codec,omitempty"`
}

// ParseFilename extracts structured metadata from a media filename. It never
// fails; unrecognized evidence just leaves fields absent.
func ParseFilename(filename string) ParsedInfo {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	var parsed ParsedInfo

	parsed.Season, parsed.Episode, parsed.EpisodeEnd = matchEpisode(name)

	tokens := strings.FieldsFunc(name, func(r rune) bool {
		return strings.ContainsRune(tokenSeparators, r)
	})

	var titleTokens []string
	for _, token := range tokens {
		lower := strings.ToLower(token)

		if stopSeasonEpisodeRe.MatchString(token) ||
			stopCrossRe.MatchString(token) ||
			stopBareEpisodeRe.MatchString(token) ||
			stopCJKEpisodeRe.MatchString(token) {
			break
		}

		if resolutionTags[lower] {
			parsed.Resolution = lower
			break
		}

		if sourceTags[lower] {
			parsed.Source = lower
			continue
		}
		if codecTags[lower] {
			parsed.Codec = lower
			continue
		}
		if audioTags[lower] {
			continue
		}

		if len(token) == 4 {
			if y, err := strconv.Atoi(token); err == nil && y >= 1900 && y <= 2099 {
				parsed.Year = y
				continue
			}
		}

		titleTokens = append(titleTokens, token)
	}

	parsed.Title = strings.Join(titleTokens, " ")
	return parsed
}

// ParseRelativePath parses a path relative to a scan root. On top of
// ParseFilename it recognizes purely numeric basenames (12.mp4) and bare
// episode basenames (E12.mkv) as episode numbers, which show up inside
// already-organized season directories where the filename carries no title.
func ParseRelativePath(relativePath string) ParsedInfo {
	filename := relativePath
	if idx := strings.LastIndex(relativePath, "/"); idx >= 0 {
		filename = relativePath[idx+1:]
	}

	parsed := ParseFilename(filename)
	if parsed.Episode != 0 {
		return parsed
	}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	match := numericBasenameRe.FindStringSubmatch(base)
	if match == nil {
		match = episodeBasenameRe.FindStringSubmatch(base)
	}
	if match != nil {
		parsed.Episode, _ = strconv.Atoi(match[1])
		if parsed.Season == 0 {
			parsed.Season = 1
		}
	}

	return parsed
}

func matchEpisode(name string) (season, episode, episodeEnd int) {
	if m := seasonEpisodeRe.FindStringSubmatch(name); m != nil {
		season, _ = strconv.Atoi(m[1])
		episode, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			episodeEnd, _ = strconv.Atoi(m[3])
		}
		return season, episode, episodeEnd
	}

	if m := crossEpisodeRe.FindStringSubmatch(name); m != nil {
		season, _ = strconv.Atoi(m[1])
		episode, _ = strconv.Atoi(m[2])
		return season, episode, 0
	}

	if m := bareEpisodeRe.FindStringSubmatch(name); m != nil {
		episode, _ = strconv.Atoi(m[1])
		return 1, episode, 0
	}

	if m := cjkEpisodeRe.FindStringSubmatch(name); m != nil {
		episode, _ = strconv.Atoi(m[1])
		return 1, episode, 0
	}

	return 0, 0, 0
}
