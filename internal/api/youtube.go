package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"youtube-tracker/internal/config"

	"github.com/valyala/fasthttp"
)

// ErrNoStatistics is returned when a response decodes but carries no usable view count.
var ErrNoStatistics = errors.New("no statistics in response")

type YouTubeClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
}

func NewYouTubeClient(cfg *config.Config) (*YouTubeClient, error) {
	if cfg.YouTubeAPIKey == "" {
		return nil, fmt.Errorf("YOUTUBE_API_KEY is required")
	}

	return &YouTubeClient{
		apiKey:  cfg.YouTubeAPIKey,
		baseURL: strings.TrimRight(cfg.YouTubeBaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}, nil
}

// GetViewCount returns the lifetime view count of a channel.
func (c *YouTubeClient) GetViewCount(ctx context.Context, channelID string) (int64, error) {
	q := url.Values{}
	q.Set("part", "statistics")
	q.Set("id", channelID)
	q.Set("key", c.apiKey)

	resp, err := doRequest[ChannelsResponse](ctx, c, c.baseURL+"/channels?"+q.Encode())
	if err != nil {
		return 0, err
	}

	if len(resp.Items) == 0 {
		return 0, fmt.Errorf("channel %s: %w", channelID, ErrNoStatistics)
	}

	raw := resp.Items[0].Statistics.ViewCount.String()
	if raw == "" {
		return 0, fmt.Errorf("channel %s: missing viewCount: %w", channelID, ErrNoStatistics)
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || count < 0 {
		return 0, fmt.Errorf("channel %s: bad viewCount %q: %w", channelID, raw, ErrNoStatistics)
	}
	return count, nil
}

func doRequest[T any](ctx context.Context, client *YouTubeClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type ChannelsResponse struct {
	Kind     string        `json:"kind"`
	PageInfo PageInfo      `json:"pageInfo"`
	Items    []ChannelItem `json:"items"`
}

type PageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

type ChannelItem struct {
	ID         string            `json:"id"`
	Statistics ChannelStatistics `json:"statistics"`
}

// The API encodes counts as JSON strings; json.Number takes both forms.
type ChannelStatistics struct {
	ViewCount             json.Number `json:"viewCount"`
	SubscriberCount       json.Number `json:"subscriberCount"`
	HiddenSubscriberCount bool        `json:"hiddenSubscriberCount"`
	VideoCount            json.Number `json:"videoCount"`
}
