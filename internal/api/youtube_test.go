package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
	"youtube-tracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey    = "test-key"
	testChannelID = "UCxjXU89x6owat9dA8Z-bzdw"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *YouTubeClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewYouTubeClient(&config.Config{YouTubeAPIKey: testAPIKey, YouTubeBaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return client
}

func respond(body string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewYouTubeClient_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewYouTubeClient(&config.Config{})

	require.Error(t, err)
}

func TestGetViewCount_StringCount(t *testing.T) {
	t.Parallel()

	requests := make(chan *url.URL, 1)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests <- r.URL
		respond(`{"kind":"youtube#channelListResponse","items":[{"id":"`+testChannelID+`","statistics":{"viewCount":"1234567890","subscriberCount":"10","videoCount":"3"}}]}`, http.StatusOK)(w, r)
	})

	count, err := client.GetViewCount(testContext(t), testChannelID)

	require.NoError(t, err)
	assert.Equal(t, int64(1234567890), count)

	got := <-requests
	assert.Equal(t, "/channels", got.Path)
	assert.Equal(t, "statistics", got.Query().Get("part"))
	assert.Equal(t, testChannelID, got.Query().Get("id"))
	assert.Equal(t, testAPIKey, got.Query().Get("key"))
}

func TestGetViewCount_NumericCount(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respond(`{"items":[{"statistics":{"viewCount":42}}]}`, http.StatusOK))

	count, err := client.GetViewCount(testContext(t), testChannelID)

	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestGetViewCount_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		status  int
		noStats bool
	}{
		{name: "no items", body: `{"items":[]}`, status: http.StatusOK, noStats: true},
		{name: "items absent", body: `{"kind":"youtube#channelListResponse"}`, status: http.StatusOK, noStats: true},
		{name: "missing viewCount", body: `{"items":[{"statistics":{}}]}`, status: http.StatusOK, noStats: true},
		{name: "fractional viewCount", body: `{"items":[{"statistics":{"viewCount":"1.5"}}]}`, status: http.StatusOK, noStats: true},
		{name: "negative viewCount", body: `{"items":[{"statistics":{"viewCount":"-3"}}]}`, status: http.StatusOK, noStats: true},
		{name: "quota exceeded", body: `{"error":{"code":403}}`, status: http.StatusForbidden},
		{name: "malformed json", body: `{"items":[`, status: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, respond(tt.body, tt.status))

			_, err := client.GetViewCount(testContext(t), testChannelID)

			require.Error(t, err)
			if tt.noStats {
				assert.ErrorIs(t, err, ErrNoStatistics)
			}
		})
	}
}

func TestGetViewCount_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client, err := NewYouTubeClient(&config.Config{YouTubeAPIKey: testAPIKey, YouTubeBaseURL: baseURL})
	require.NoError(t, err)

	_, err = client.GetViewCount(testContext(t), testChannelID)

	require.Error(t, err)
}
