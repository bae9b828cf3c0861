package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	mediahttp "github.com/yfmeii/media-scraper-web/pkg/http"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultImageURL = "https://image.tmdb.org/t/p"

	// DefaultLanguage matches the language the library sidecars are written in.
	DefaultLanguage = "zh-CN"

	PosterSizeDetail = "w500"
	PosterSizeThumb  = "w185"
	BackdropSize     = "w1280"
)

// Client is a TMDB v3 API client covering the search, details, and find
// endpoints the scraper uses.
type Client struct {
	baseURL  string
	imageURL string
	apiKey   string
	language string
	http     mediahttp.HTTPClient
}

type ClientOption func(*Client)

// WithLanguage sets the default language for requests that do not specify one
func WithLanguage(language string) ClientOption {
	return func(c *Client) {
		if language != "" {
			c.language = language
		}
	}
}

// WithHTTPClient sets the http client used for API and image requests
func WithHTTPClient(client mediahttp.HTTPClient) ClientOption {
	return func(c *Client) {
		c.http = client
	}
}

// WithImageBaseURL overrides the image CDN base
func WithImageBaseURL(imageURL string) ClientOption {
	return func(c *Client) {
		if imageURL != "" {
			c.imageURL = strings.TrimRight(imageURL, "/")
		}
	}
}

// New creates a TMDB client. An empty baseURL selects the public API.
func New(baseURL, apiKey string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		imageURL: DefaultImageURL,
		apiKey:   apiKey,
		language: DefaultLanguage,
		http:     mediahttp.NewRateLimitedHTTPClient(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) (int, error) {
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("unexpected tmdb status: %s", resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	return resp.StatusCode, json.Unmarshal(b, out)
}

func (c *Client) lang(language string) string {
	if language == "" {
		return c.language
	}
	return language
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchTV searches TV shows. A non-zero year narrows by first air date year.
func (c *Client) SearchTV(ctx context.Context, query string, year int, language string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.lang(language))
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}

	var res searchResponse
	if _, err := c.get(ctx, "/search/tv", params, &res); err != nil {
		return nil, err
	}

	for i := range res.Results {
		res.Results[i].MediaType = MediaTypeTV
	}
	return res.Results, nil
}

// SearchMovie searches movies. A non-zero year narrows by release year.
func (c *Client) SearchMovie(ctx context.Context, query string, year int, language string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.lang(language))
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var res searchResponse
	if _, err := c.get(ctx, "/search/movie", params, &res); err != nil {
		return nil, err
	}

	for i := range res.Results {
		res.Results[i].MediaType = MediaTypeMovie
	}
	return res.Results, nil
}

// SearchMulti searches movies and TV shows together. Results of other media
// types are dropped. When year is non-zero, dated results further than one
// year away are dropped; undated results are kept.
func (c *Client) SearchMulti(ctx context.Context, query string, year int, language string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.lang(language))
	params.Set("include_adult", "false")

	var res searchResponse
	if _, err := c.get(ctx, "/search/multi", params, &res); err != nil {
		return nil, err
	}

	filtered := res.Results[:0]
	for _, r := range res.Results {
		if r.MediaType != MediaTypeTV && r.MediaType != MediaTypeMovie {
			continue
		}
		if year > 0 {
			if resultYear := r.Year(); resultYear > 0 && abs(resultYear-year) > 1 {
				continue
			}
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// GetShowDetails fetches show details. A nil result means the show is unknown.
func (c *Client) GetShowDetails(ctx context.Context, id int, language string) (*ShowDetails, error) {
	params := url.Values{}
	params.Set("language", c.lang(language))

	var details ShowDetails
	status, err := c.get(ctx, fmt.Sprintf("/tv/%d", id), params, &details)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// GetMovieDetails fetches movie details. A nil result means the movie is unknown.
func (c *Client) GetMovieDetails(ctx context.Context, id int, language string) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("language", c.lang(language))

	var details MovieDetails
	status, err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params, &details)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// GetSeasonDetails fetches a season including its episode listing.
func (c *Client) GetSeasonDetails(ctx context.Context, id, season int, language string) (*SeasonDetails, error) {
	params := url.Values{}
	params.Set("language", c.lang(language))

	var details SeasonDetails
	status, err := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", id, season), params, &details)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &details, nil
}

type findResponse struct {
	TVResults    []SearchResult `json:"tv_results"`
	MovieResults []SearchResult `json:"movie_results"`
}

// FindByIMDBID resolves an IMDb id to a TMDB entry of the given media type.
// A nil result means nothing matched.
func (c *Client) FindByIMDBID(ctx context.Context, imdbID, mediaType, language string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("language", c.lang(language))
	params.Set("external_source", "imdb_id")

	var res findResponse
	if _, err := c.get(ctx, "/find/"+url.PathEscape(imdbID), params, &res); err != nil {
		return nil, err
	}

	results := res.TVResults
	if mediaType == MediaTypeMovie {
		results = res.MovieResults
	}
	if len(results) == 0 {
		return nil, nil
	}

	match := results[0]
	match.MediaType = mediaType
	return &match, nil
}

// PosterURL builds an image CDN URL for a poster path. Empty when no path.
func (c *Client) PosterURL(path, size string) string {
	return c.imageFileURL(path, size)
}

// BackdropURL builds an image CDN URL for a backdrop path. Empty when no path.
func (c *Client) BackdropURL(path string) string {
	return c.imageFileURL(path, BackdropSize)
}

func (c *Client) imageFileURL(path, size string) string {
	if path == "" {
		return ""
	}
	return c.imageURL + "/" + size + path
}

// DownloadImage fetches image bytes from an absolute image URL.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected image status: %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// Score rates how well a search result matches the query evidence, in [0, 1].
// Exact title matches score 0.5, substring containment either direction 0.3.
// An exact year adds 0.3, a ±1 year 0.15. The vote average contributes up to
// 0.2 so well-known entries win ties.
func Score(query string, year int, r SearchResult) float64 {
	score := 0.0

	resultTitle := strings.ToLower(r.DisplayName())
	queryLower := strings.ToLower(query)

	if resultTitle == queryLower {
		score += 0.5
	} else if resultTitle != "" && (strings.Contains(resultTitle, queryLower) || strings.Contains(queryLower, resultTitle)) {
		score += 0.3
	}

	if resultYear := r.Year(); resultYear > 0 && year > 0 {
		if resultYear == year {
			score += 0.3
		} else if abs(resultYear-year) <= 1 {
			score += 0.15
		}
	}

	score += math.Min(r.VoteAverage/50, 0.2)

	return math.Min(score, 1)
}
