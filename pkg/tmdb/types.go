package tmdb

import "strconv"

const (
	MediaTypeTV    = "tv"
	MediaTypeMovie = "movie"
)

type SearchResult struct {
	ID            int     `json:"id"`
	MediaType     string  `json:"media_type,omitempty"`
	Name          string  `json:"name,omitempty"`
	Title         string  `json:"title,omitempty"`
	OriginalName  string  `json:"original_name,omitempty"`
	OriginalTitle string  `json:"original_title,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	PosterPath    string  `json:"poster_path,omitempty"`
	BackdropPath  string  `json:"backdrop_path,omitempty"`
	FirstAirDate  string  `json:"first_air_date,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	VoteAverage   float64 `json:"vote_average,omitempty"`
}

// DisplayName returns the show name or movie title, whichever is set.
func (r SearchResult) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Title
}

// OriginalDisplayName is DisplayName for the original-language fields.
func (r SearchResult) OriginalDisplayName() string {
	if r.OriginalName != "" {
		return r.OriginalName
	}
	return r.OriginalTitle
}

// Date returns the first air date or release date, whichever is set.
func (r SearchResult) Date() string {
	if r.FirstAirDate != "" {
		return r.FirstAirDate
	}
	return r.ReleaseDate
}

// Year extracts the year from the result date. Zero when unknown.
func (r SearchResult) Year() int {
	return yearOf(r.Date())
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ShowDetails struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	OriginalName    string  `json:"original_name"`
	Overview        string  `json:"overview"`
	PosterPath      string  `json:"poster_path,omitempty"`
	BackdropPath    string  `json:"backdrop_path,omitempty"`
	FirstAirDate    string  `json:"first_air_date"`
	VoteAverage     float64 `json:"vote_average"`
	Status          string  `json:"status,omitempty"`
	Genres          []Genre `json:"genres"`
	NumberOfSeasons int     `json:"number_of_seasons"`
}

func (d ShowDetails) Year() int { return yearOf(d.FirstAirDate) }

type MovieDetails struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path,omitempty"`
	BackdropPath  string  `json:"backdrop_path,omitempty"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	Runtime       int     `json:"runtime"`
	Tagline       string  `json:"tagline,omitempty"`
	Genres        []Genre `json:"genres"`
}

func (d MovieDetails) Year() int { return yearOf(d.ReleaseDate) }

type EpisodeDetails struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	EpisodeNumber int     `json:"episode_number"`
	SeasonNumber  int     `json:"season_number"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	VoteAverage   float64 `json:"vote_average"`
	StillPath     string  `json:"still_path,omitempty"`
}

type SeasonDetails struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	SeasonNumber int              `json:"season_number"`
	Overview     string           `json:"overview"`
	PosterPath   string           `json:"poster_path,omitempty"`
	AirDate      string           `json:"air_date,omitempty"`
	Episodes     []EpisodeDetails `json:"episodes"`
}

// Episode finds an episode by number. Nil when the season listing does not
// contain it.
func (d SeasonDetails) Episode(number int) *EpisodeDetails {
	for i := range d.Episodes {
		if d.Episodes[i].EpisodeNumber == number {
			return &d.Episodes[i]
		}
	}
	return nil
}
