package http

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	responses []*http.Response
	calls     int
}

func (s *scriptedClient) Do(req *http.Request) (*http.Response, error) {
	resp := s.responses[s.calls]
	if s.calls < len(s.responses)-1 {
		s.calls++
	}
	return resp, nil
}

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("")),
	}
}

func TestDoPassesThroughSuccess(t *testing.T) {
	inner := &scriptedClient{responses: []*http.Response{response(http.StatusOK)}}
	c := NewRateLimitedHTTPClient(WithHTTPClient(inner))

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDoRetriesRateLimit(t *testing.T) {
	inner := &scriptedClient{responses: []*http.Response{
		response(http.StatusTooManyRequests),
		response(http.StatusOK),
	}}
	c := NewRateLimitedHTTPClient(
		WithHTTPClient(inner),
		WithBaseBackoff(time.Millisecond),
	)

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, inner.calls)
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	inner := &scriptedClient{responses: []*http.Response{
		response(http.StatusTooManyRequests),
		response(http.StatusTooManyRequests),
	}}
	c := NewRateLimitedHTTPClient(
		WithHTTPClient(inner),
		WithBaseBackoff(time.Millisecond),
		WithMaxRetries(2),
	)

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	assert.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
