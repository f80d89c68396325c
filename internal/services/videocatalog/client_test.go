package videocatalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"steeple/internal/services"
	"steeple/internal/services/videocatalog"
)

func newClient(t *testing.T, serverURL string) *videocatalog.Client {
	t.Helper()
	client, err := videocatalog.New("yt-key", serverURL, "UCchannel")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := videocatalog.New("", "https://example.com", "UCchannel"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestSearchPublishedWindowQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("channelId") != "UCchannel" || q.Get("key") != "yt-key" {
			t.Fatalf("unexpected identity params: %q", r.URL.RawQuery)
		}
		if q.Get("publishedAfter") != "2025-09-03T00:00:00Z" {
			t.Fatalf("unexpected publishedAfter: %q", q.Get("publishedAfter"))
		}
		if q.Get("publishedBefore") != "2025-09-11T23:59:59Z" {
			t.Fatalf("unexpected publishedBefore: %q", q.Get("publishedBefore"))
		}
		if q.Get("maxResults") != "20" || q.Get("order") != "date" || q.Get("type") != "video" {
			t.Fatalf("unexpected search params: %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"videoId":"v1"},"snippet":{"title":"Sunday Service","publishedAt":"2025-09-07T14:02:11Z"}},
			{"id":{"videoId":"v2"},"snippet":{"title":"Midweek Talk","publishedAt":"2025-09-04T00:00:00Z"}}
		]}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	from := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 9, 11, 0, 0, 0, 0, time.UTC)
	videos, err := client.SearchPublishedWindow(context.Background(), from, to)
	if err != nil {
		t.Fatalf("SearchPublishedWindow returned error: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("unexpected videos: %#v", videos)
	}
	if videos[0].ID != "v1" || !videos[0].PublishedAt.Equal(time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first video: %#v", videos[0])
	}
}

func TestSearchLiveSetsEventType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("eventType") != "live" {
			t.Fatalf("expected eventType=live, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("maxResults") != "1" {
			t.Fatalf("expected maxResults=1, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"items":[{"id":{"videoId":"live1"},"snippet":{"title":"Sunday Service LIVE","publishedAt":"2025-09-07T13:45:00Z"}}]}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	videos, err := client.SearchLive(context.Background())
	if err != nil {
		t.Fatalf("SearchLive returned error: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != "live1" {
		t.Fatalf("unexpected videos: %#v", videos)
	}
}

func TestMostRecentEmptyChannel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("eventType") != "" {
			t.Fatalf("most recent lookup must not filter by eventType: %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	video, err := client.MostRecent(context.Background())
	if err != nil {
		t.Fatalf("MostRecent returned error: %v", err)
	}
	if video != nil {
		t.Fatalf("expected nil video, got %#v", video)
	}
}

func TestSearchHTTPErrorIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	_, err := client.SearchLive(context.Background())
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestVideoDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/youtube/v3/videos" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("id") != "abc123" {
			t.Fatalf("unexpected id: %q", r.URL.Query().Get("id"))
		}
		_, _ = w.Write([]byte(`{"items":[{"snippet":{"description":"Join us for worship."}}]}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	description, err := client.VideoDescription(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("VideoDescription returned error: %v", err)
	}
	if description != "Join us for worship." {
		t.Fatalf("unexpected description: %q", description)
	}
}

func TestVideoDescriptionMissingVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	description, err := client.VideoDescription(context.Background(), "gone")
	if err != nil {
		t.Fatalf("VideoDescription returned error: %v", err)
	}
	if description != "" {
		t.Fatalf("expected empty description, got %q", description)
	}
}
