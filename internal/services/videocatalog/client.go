package videocatalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"steeple/internal/services"
)

// Video represents a single catalog entry discovered by search.
type Video struct {
	ID          string
	Title       string
	PublishedAt time.Time
}

// API defines the catalog operations used by the video matcher.
type API interface {
	SearchPublishedWindow(ctx context.Context, from, to time.Time) ([]Video, error)
	SearchLive(ctx context.Context) ([]Video, error)
	MostRecent(ctx context.Context) (*Video, error)
	VideoDescription(ctx context.Context, videoID string) (string, error)
}

// Client provides read-only access to the video catalog API.
type Client struct {
	apiKey     string
	baseURL    string
	channelID  string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a video catalog client scoped to a single channel.
func New(apiKey, baseURL, channelID string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("catalog api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("catalog base url required")
	}
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, errors.New("catalog channel id required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		channelID:  channelID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		PublishedAt string `json:"publishedAt"`
	} `json:"snippet"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

// SearchPublishedWindow returns videos published on the channel within the
// inclusive day window [from, to], newest first, capped at 20 results.
func (c *Client) SearchPublishedWindow(ctx context.Context, from, to time.Time) ([]Video, error) {
	params := c.searchParams()
	params.Set("publishedAfter", from.UTC().Format("2006-01-02")+"T00:00:00Z")
	params.Set("publishedBefore", to.UTC().Format("2006-01-02")+"T23:59:59Z")
	params.Set("maxResults", "20")
	return c.search(ctx, params)
}

// SearchLive returns currently-live broadcasts on the channel, if any.
func (c *Client) SearchLive(ctx context.Context) ([]Video, error) {
	params := c.searchParams()
	params.Set("eventType", "live")
	params.Set("maxResults", "1")
	return c.search(ctx, params)
}

// MostRecent returns the most recently published video on the channel,
// regardless of title or live status. A nil video means the channel is empty.
func (c *Client) MostRecent(ctx context.Context) (*Video, error) {
	params := c.searchParams()
	params.Set("maxResults", "1")
	videos, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, nil
	}
	return &videos[0], nil
}

// VideoDescription fetches the description of a single video by ID. A missing
// video or empty description returns "" without error.
func (c *Client) VideoDescription(ctx context.Context, videoID string) (string, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return "", errors.New("video id must not be empty")
	}

	endpoint, err := url.Parse(c.baseURL + "/youtube/v3/videos")
	if err != nil {
		return "", fmt.Errorf("parse catalog url: %w", err)
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", videoID)
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	var payload struct {
		Items []struct {
			Snippet struct {
				Description string `json:"description"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := c.get(ctx, endpoint.String(), &payload); err != nil {
		return "", err
	}
	if len(payload.Items) == 0 {
		return "", nil
	}
	return payload.Items[0].Snippet.Description, nil
}

func (c *Client) searchParams() url.Values {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", c.channelID)
	params.Set("order", "date")
	params.Set("type", "video")
	params.Set("key", c.apiKey)
	return params
}

func (c *Client) search(ctx context.Context, params url.Values) ([]Video, error) {
	endpoint, err := url.Parse(c.baseURL + "/youtube/v3/search")
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	var payload searchResponse
	if err := c.get(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, Video{
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			PublishedAt: parsePublishedAt(item.Snippet.PublishedAt),
		})
	}
	return videos, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "videocatalog", "get", "execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrTransport, "videocatalog", "get",
			fmt.Sprintf("catalog returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

// parsePublishedAt reads the date portion of a catalog timestamp. The catalog
// pads timestamps inconsistently, so only the calendar date is trusted.
func parsePublishedAt(value string) time.Time {
	value = strings.TrimSpace(value)
	if len(value) < 10 {
		return time.Time{}
	}
	parsed, err := time.Parse("2006-01-02", value[:10])
	if err != nil {
		return time.Time{}
	}
	return parsed
}
