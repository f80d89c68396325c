package publishing

import (
	"bytes"
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

// EpisodeSummary captures the identifying fields of an episode search hit.
type EpisodeSummary struct {
	ID    string
	Title string
}

// Episode describes a full episode record returned on creation.
type Episode struct {
	ID                   string
	Title                string
	PublishedToLibraryAt string
}

// EpisodeTime describes a scheduling sub-record of an episode.
type EpisodeTime struct {
	ID             string
	StartsAt       string
	VideoEmbedCode string
}

// EpisodeUpdate lists the episode attributes a PATCH may set. Zero-valued
// fields are omitted from the request body.
type EpisodeUpdate struct {
	LibraryVideoURL      string `json:"library_video_url,omitempty"`
	PublishedToLibraryAt string `json:"published_to_library_at,omitempty"`
	Description          string `json:"description,omitempty"`
}

// API defines the publishing platform operations used by the workflow.
type API interface {
	SearchEpisodes(ctx context.Context, title string) ([]EpisodeSummary, error)
	CreateEpisode(ctx context.Context, title, publishedToLibraryAt string) (*Episode, error)
	ListEpisodeTimes(ctx context.Context, episodeID string) ([]EpisodeTime, error)
	UpdateEpisodeTime(ctx context.Context, episodeID, timeID, startsAt, embedCode string) error
	UpdateEpisode(ctx context.Context, episodeID string, update EpisodeUpdate) error
}

// Client provides access to the publishing platform API.
type Client struct {
	appID      string
	secret     string
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

// New creates a publishing platform client.
func New(appID, secret, baseURL, channelID string, opts ...Option) (*Client, error) {
	appID = strings.TrimSpace(appID)
	secret = strings.TrimSpace(secret)
	if appID == "" || secret == "" {
		return nil, errors.New("publishing credentials required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("publishing base url required")
	}
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, errors.New("publishing channel id required")
	}
	client := &Client{
		appID:      appID,
		secret:     secret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		channelID:  channelID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type episodeAttributes struct {
	Title                string `json:"title,omitempty"`
	PublishedToLibraryAt string `json:"published_to_library_at,omitempty"`
	LibraryVideoURL      string `json:"library_video_url,omitempty"`
	Description          string `json:"description,omitempty"`
}

type episodeTimeAttributes struct {
	StartsAt       string `json:"starts_at,omitempty"`
	VideoEmbedCode string `json:"video_embed_code,omitempty"`
}

type episodeResource struct {
	ID         string            `json:"id"`
	Attributes episodeAttributes `json:"attributes"`
}

type episodeTimeResource struct {
	ID         string                `json:"id"`
	Attributes episodeTimeAttributes `json:"attributes"`
}

// SearchEpisodes queries the channel for episodes whose title matches the
// supplied text, newest first. An empty result is returned as an empty slice,
// not an error.
func (c *Client) SearchEpisodes(ctx context.Context, title string) ([]EpisodeSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}

	endpoint, err := url.Parse(fmt.Sprintf("%s/publishing/v2/channels/%s/episodes", c.baseURL, c.channelID))
	if err != nil {
		return nil, fmt.Errorf("parse publishing url: %w", err)
	}
	params := url.Values{}
	params.Set("order", "-published_live_at")
	params.Set("where[search]", title)
	endpoint.RawQuery = params.Encode()

	var payload struct {
		Data []episodeResource `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint.String(), nil, &payload); err != nil {
		return nil, err
	}

	summaries := make([]EpisodeSummary, 0, len(payload.Data))
	for _, resource := range payload.Data {
		summaries = append(summaries, EpisodeSummary{
			ID:    resource.ID,
			Title: resource.Attributes.Title,
		})
	}
	return summaries, nil
}

// CreateEpisode creates a new episode on the channel. The platform implicitly
// creates the first episode time alongside it.
func (c *Client) CreateEpisode(ctx context.Context, title, publishedToLibraryAt string) (*Episode, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}

	endpoint := fmt.Sprintf("%s/publishing/v2/channels/%s/episodes", c.baseURL, c.channelID)
	body := map[string]any{
		"data": map[string]any{
			"attributes": episodeAttributes{
				Title:                title,
				PublishedToLibraryAt: publishedToLibraryAt,
			},
		},
	}

	var payload struct {
		Data episodeResource `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, endpoint, body, &payload); err != nil {
		return nil, err
	}
	if payload.Data.ID == "" {
		return nil, services.Wrap(services.ErrTransport, "publishing", "create episode", "response carried no id", nil)
	}
	return &Episode{
		ID:                   payload.Data.ID,
		Title:                payload.Data.Attributes.Title,
		PublishedToLibraryAt: payload.Data.Attributes.PublishedToLibraryAt,
	}, nil
}

// ListEpisodeTimes returns the episode time sub-records for an episode in
// platform order.
func (c *Client) ListEpisodeTimes(ctx context.Context, episodeID string) ([]EpisodeTime, error) {
	episodeID = strings.TrimSpace(episodeID)
	if episodeID == "" {
		return nil, errors.New("episode id must not be empty")
	}

	endpoint := fmt.Sprintf("%s/publishing/v2/episodes/%s/episode_times", c.baseURL, episodeID)
	var payload struct {
		Data []episodeTimeResource `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &payload); err != nil {
		return nil, err
	}

	times := make([]EpisodeTime, 0, len(payload.Data))
	for _, resource := range payload.Data {
		times = append(times, EpisodeTime{
			ID:             resource.ID,
			StartsAt:       resource.Attributes.StartsAt,
			VideoEmbedCode: resource.Attributes.VideoEmbedCode,
		})
	}
	return times, nil
}

// UpdateEpisodeTime patches the start timestamp and embed markup of an episode time.
func (c *Client) UpdateEpisodeTime(ctx context.Context, episodeID, timeID, startsAt, embedCode string) error {
	episodeID = strings.TrimSpace(episodeID)
	timeID = strings.TrimSpace(timeID)
	if episodeID == "" || timeID == "" {
		return errors.New("episode id and time id must not be empty")
	}

	endpoint := fmt.Sprintf("%s/publishing/v2/episodes/%s/episode_times/%s", c.baseURL, episodeID, timeID)
	body := map[string]any{
		"data": map[string]any{
			"attributes": episodeTimeAttributes{
				StartsAt:       startsAt,
				VideoEmbedCode: embedCode,
			},
		},
	}
	return c.do(ctx, http.MethodPatch, endpoint, body, nil)
}

// UpdateEpisode patches episode-level attributes. Only fields set in update are sent.
func (c *Client) UpdateEpisode(ctx context.Context, episodeID string, update EpisodeUpdate) error {
	episodeID = strings.TrimSpace(episodeID)
	if episodeID == "" {
		return errors.New("episode id must not be empty")
	}

	endpoint := fmt.Sprintf("%s/publishing/v2/episodes/%s", c.baseURL, episodeID)
	body := map[string]any{
		"data": map[string]any{
			"attributes": update,
		},
	}
	return c.do(ctx, http.MethodPatch, endpoint, body, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.appID, c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "publishing", strings.ToLower(method), "execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrTransport, "publishing", strings.ToLower(method),
			fmt.Sprintf("platform returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode publishing response: %w", err)
	}
	return nil
}
