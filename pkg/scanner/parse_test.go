package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilename(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		want     ParsedInfo
	}{
		{
			name:     "season episode marker stops the title",
			filename: "Breaking.Bad.S01E01.1080p.BluRay.x265.mkv",
			want: ParsedInfo{
				Title:   "Breaking Bad",
				Season:  1,
				Episode: 1,
			},
		},
		{
			name:     "double episode",
			filename: "Show.S02E03E04.720p.mkv",
			want: ParsedInfo{
				Title:      "Show",
				Season:     2,
				Episode:    3,
				EpisodeEnd: 4,
			},
		},
		{
			name:     "cross notation",
			filename: "Some Show 2x05 HDTV.mp4",
			want: ParsedInfo{
				Title:   "Some Show",
				Season:  2,
				Episode: 5,
			},
		},
		{
			name:     "bare episode defaults season one",
			filename: "Show Name EP07.mkv",
			want: ParsedInfo{
				Title:   "Show Name",
				Season:  1,
				Episode: 7,
			},
		},
		{
			name:     "cjk episode marker",
			filename: "某某剧 第12集 1080p.mkv",
			want: ParsedInfo{
				Title:   "某某剧",
				Season:  1,
				Episode: 12,
			},
		},
		{
			name:     "movie with year",
			filename: "Inception.2010.1080p.BluRay.x264.mkv",
			want: ParsedInfo{
				Title:      "Inception",
				Year:       2010,
				Resolution: "1080p",
			},
		},
		{
			name:     "resolution stops the scan",
			filename: "Movie.2019.2160p.WEB-DL.DDP5.1.HEVC.mkv",
			want: ParsedInfo{
				Title:      "Movie",
				Year:       2019,
				Resolution: "2160p",
			},
		},
		{
			name:     "source and codec before resolution are captured",
			filename: "Movie.2019.WEBRip.x265.1080p.mkv",
			want: ParsedInfo{
				Title:      "Movie",
				Year:       2019,
				Resolution: "1080p",
				Source:     "webrip",
				Codec:      "x265",
			},
		},
		{
			name:     "four digit year captured and excluded from title",
			filename: "Blade Runner 2049.mkv",
			want: ParsedInfo{
				Title: "Blade Runner",
				Year:  2049,
			},
		},
		{
			name:     "four digit number outside year range stays in title",
			filename: "Movie 1850.mkv",
			want: ParsedInfo{
				Title: "Movie 1850",
			},
		},
		{
			name:     "no evidence at all",
			filename: "random clip.mov",
			want: ParsedInfo{
				Title: "random clip",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseFilename(tc.filename))
		})
	}
}

func TestParseFilenameSeasonEpisodeWinsOverCross(t *testing.T) {
	parsed := ParseFilename("Show.S03E07.2x05.mkv")
	assert.Equal(t, 3, parsed.Season)
	assert.Equal(t, 7, parsed.Episode)
}

func TestParseRelativePathNumericBasename(t *testing.T) {
	parsed := ParseRelativePath("Some Show/Season 01/12.mp4")
	assert.Equal(t, 1, parsed.Season)
	assert.Equal(t, 12, parsed.Episode)

	parsed = ParseRelativePath("Some Show/Season 02/E03.mkv")
	assert.Equal(t, 1, parsed.Season)
	assert.Equal(t, 3, parsed.Episode)
}

func TestParseRelativePathKeepsFilenameEvidence(t *testing.T) {
	parsed := ParseRelativePath("inbox/Show.S01E02.mkv")
	assert.Equal(t, 1, parsed.Season)
	assert.Equal(t, 2, parsed.Episode)
	assert.Equal(t, "Show", parsed.Title)
}

func TestFileKindHelpers(t *testing.T) {
	assert.True(t, IsVideoFile("a.MKV"))
	assert.True(t, IsVideoFile("a.mp4"))
	assert.False(t, IsVideoFile("a.srt"))
	assert.True(t, IsSubtitleFile("a.srt"))
	assert.True(t, IsSubtitleFile("a.ASS"))
	assert.False(t, IsSubtitleFile("a.mkv"))
}

func TestNFOPathFor(t *testing.T) {
	assert.Equal(t, "/tv/Show/Season 01/Show - S01E01.nfo", NFOPathFor("/tv/Show/Season 01/Show - S01E01.mkv"))
}

func TestSeasonDirName(t *testing.T) {
	assert.Equal(t, "Season 01", SeasonDirName(1))
	assert.Equal(t, "Season 12", SeasonDirName(12))
}
