// Package dify calls an external AI workflow that recognizes media titles
// from raw file paths. Its output is best-effort evidence for matching and is
// never treated as authoritative.
package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	mediahttp "github.com/yfmeii/media-scraper-web/pkg/http"
	"github.com/yfmeii/media-scraper-web/pkg/logger"
	"github.com/yfmeii/media-scraper-web/pkg/tmdb"
)

// user tag sent with every workflow invocation.
const workflowUser = "media-scraper-web"

// CatalogResolver maps an IMDb id to a catalog record. Satisfied by
// *tmdb.Client; recognition results carrying an IMDb id get resolved to an
// exact catalog id instead of trusting the model's own id field.
type CatalogResolver interface {
	FindByIMDBID(ctx context.Context, imdbID, mediaType, language string) (*tmdb.SearchResult, error)
}

// RecognizeResult is the normalized outcome of a path recognition call.
type RecognizeResult struct {
	Path       string  `json:"path"`
	Title      string  `json:"title"`
	MediaType  string  `json:"media_type"`
	Year       int     `json:"year,omitempty"`
	Season     int     `json:"season,omitempty"`
	Episode    int     `json:"episode,omitempty"`
	IMDBID     string  `json:"imdb_id,omitempty"`
	TMDBID     int     `json:"tmdb_id,omitempty"`
	TMDBName   string  `json:"tmdb_name,omitempty"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

type Client struct {
	baseURL  string
	apiKey   string
	language string
	http     mediahttp.HTTPClient
	resolver CatalogResolver
}

type ClientOption func(*Client)

func WithHTTPClient(client mediahttp.HTTPClient) ClientOption {
	return func(c *Client) {
		c.http = client
	}
}

func WithLanguage(language string) ClientOption {
	return func(c *Client) {
		c.language = language
	}
}

// New creates a recognition client. resolver may be nil, in which case IMDb
// ids from the model are passed through unresolved.
func New(baseURL, apiKey string, resolver CatalogResolver, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		language: tmdb.DefaultLanguage,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// Enabled reports whether the client is configured to make calls.
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type chatPayload struct {
	Inputs         map[string]any `json:"inputs"`
	Query          string         `json:"query"`
	ResponseMode   string         `json:"response_mode"`
	ConversationID string         `json:"conversation_id"`
	User           string         `json:"user"`
}

// RecognizePath sends a raw path through the recognition workflow and
// normalizes the streamed answer. When the answer carries an IMDb id, the
// catalog resolver upgrades it to an exact catalog id and display name.
func (c *Client) RecognizePath(ctx context.Context, filePath string) (*RecognizeResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("path recognizer is not configured")
	}

	payload := chatPayload{
		Inputs:         map[string]any{},
		Query:          filePath,
		ResponseMode:   "streaming",
		ConversationID: "",
		User:           workflowUser,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal recognizer payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("couldn't create recognizer request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognizer call failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("couldn't read recognizer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognizer returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	answer := extractStreamingAnswer(string(text))
	if answer == "" {
		return nil, fmt.Errorf("recognizer returned no answer")
	}

	raw, ok := parseAnswer(answer)
	if !ok {
		return nil, fmt.Errorf("recognizer answer is not valid json: %s", answer)
	}

	return c.normalize(ctx, filePath, raw), nil
}

// extractStreamingAnswer concatenates the answer fragments from an SSE
// transcript. Non-data lines and unparseable events are skipped.
func extractStreamingAnswer(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "data:") {
			continue
		}

		var event struct {
			Event  string `json:"event"`
			Answer string `json:"answer"`
		}
		if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed[5:])), &event); err != nil {
			continue
		}
		if event.Event == "message" {
			sb.WriteString(event.Answer)
		}
	}
	return strings.TrimSpace(sb.String())
}

// parseAnswer parses the model's answer as JSON, falling back to the outermost
// brace-delimited slice when the model wrapped the object in prose.
func parseAnswer(answer string) (map[string]any, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(answer), &raw); err == nil {
		return raw, true
	}

	left := strings.Index(answer, "{")
	right := strings.LastIndex(answer, "}")
	if left == -1 || right <= left {
		return nil, false
	}
	if err := json.Unmarshal([]byte(answer[left:right+1]), &raw); err != nil {
		return nil, false
	}
	return raw, true
}

func (c *Client) normalize(ctx context.Context, filePath string, raw map[string]any) *RecognizeResult {
	log := logger.FromCtx(ctx)

	mediaType := tmdb.MediaTypeTV
	if stringField(raw, "media_type", "mediaType", "type") == tmdb.MediaTypeMovie {
		mediaType = tmdb.MediaTypeMovie
	}

	imdbID := strings.TrimSpace(stringField(raw, "imdb_id", "imdbId", "imdbID", "imdb"))
	tmdbID := intField(raw, "tmdb_id", "tmdbId", "tmdbID")
	tmdbName := stringField(raw, "tmdb_name", "tmdbName", "name")

	title := stringField(raw, "title")
	if title == "" {
		title = tmdbName
	}

	// An IMDb id beats whatever catalog id the model claims.
	if imdbID != "" && c.resolver != nil {
		matched, err := c.resolver.FindByIMDBID(ctx, imdbID, mediaType, c.language)
		if err != nil {
			log.Warnw("failed to resolve imdb id", "imdbID", imdbID, "error", err)
		} else if matched != nil {
			tmdbID = matched.ID
			if name := matched.DisplayName(); name != "" {
				tmdbName = name
			}
		}
	}

	result := &RecognizeResult{
		Path:       stringField(raw, "path"),
		Title:      title,
		MediaType:  mediaType,
		Year:       intField(raw, "year"),
		Season:     intField(raw, "season"),
		Episode:    intField(raw, "episode"),
		IMDBID:     imdbID,
		TMDBID:     tmdbID,
		TMDBName:   tmdbName,
		Confidence: floatField(raw, "confidence"),
		Reason:     stringField(raw, "reason"),
	}
	if result.Path == "" {
		result.Path = filePath
	}
	return result
}

// Alias-tolerant field accessors. The workflow's answer schema has drifted
// between snake_case and camelCase over time.

func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func floatField(raw map[string]any, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := raw[key].(float64); ok {
			return v
		}
	}
	return 0
}

func intField(raw map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return int(v)
		case string:
			var n int
			if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
				return n
			}
		}
	}
	return 0
}
