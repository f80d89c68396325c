package publishing_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"steeple/internal/services"
	"steeple/internal/services/publishing"
)

func newClient(t *testing.T, serverURL string) *publishing.Client {
	t.Helper()
	client, err := publishing.New("app", "secret", serverURL, "3708")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := publishing.New("", "secret", "https://example.com", "3708"); err == nil {
		t.Fatal("expected error when app id missing")
	}
	if _, err := publishing.New("app", "secret", "https://example.com", ""); err == nil {
		t.Fatal("expected error when channel id missing")
	}
}

func TestSearchEpisodesSendsBasicAuthAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "app" || pass != "secret" {
			t.Fatalf("expected basic auth credentials, got %q/%q", user, pass)
		}
		if r.URL.Path != "/publishing/v2/channels/3708/episodes" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("where[search]"); got != "Sunday, September 07, 2025" {
			t.Fatalf("unexpected search query: %q", got)
		}
		if got := r.URL.Query().Get("order"); got != "-published_live_at" {
			t.Fatalf("unexpected order: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"111","attributes":{"title":"Sunday, September 07, 2025"}}]}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	summaries, err := client.SearchEpisodes(context.Background(), "Sunday, September 07, 2025")
	if err != nil {
		t.Fatalf("SearchEpisodes returned error: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "111" {
		t.Fatalf("unexpected summaries: %#v", summaries)
	}
}

func TestSearchEpisodesEmptyResultIsNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	summaries, err := client.SearchEpisodes(context.Background(), "Sunday, January 05, 2025")
	if err != nil {
		t.Fatalf("SearchEpisodes returned error: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected no summaries, got %#v", summaries)
	}
}

func TestSearchEpisodesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	_, err := client.SearchEpisodes(context.Background(), "Sunday, January 05, 2025")
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestCreateEpisodePostsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var body struct {
			Data struct {
				Attributes map[string]string `json:"attributes"`
			} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if body.Data.Attributes["title"] != "Sunday, September 07, 2025" {
			t.Fatalf("unexpected title: %q", body.Data.Attributes["title"])
		}
		if body.Data.Attributes["published_to_library_at"] != "2025-09-07T13:45:00Z" {
			t.Fatalf("unexpected published_to_library_at: %q", body.Data.Attributes["published_to_library_at"])
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"222","attributes":{"title":"Sunday, September 07, 2025"}}}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	episode, err := client.CreateEpisode(context.Background(), "Sunday, September 07, 2025", "2025-09-07T13:45:00Z")
	if err != nil {
		t.Fatalf("CreateEpisode returned error: %v", err)
	}
	if episode.ID != "222" {
		t.Fatalf("unexpected episode: %#v", episode)
	}
}

func TestListEpisodeTimesReturnsPlatformOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/publishing/v2/episodes/222/episode_times" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"t1","attributes":{"starts_at":"2025-09-07T13:45:00Z"}},{"id":"t2"}]}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	times, err := client.ListEpisodeTimes(context.Background(), "222")
	if err != nil {
		t.Fatalf("ListEpisodeTimes returned error: %v", err)
	}
	if len(times) != 2 || times[0].ID != "t1" {
		t.Fatalf("unexpected times: %#v", times)
	}
}

func TestUpdateEpisodeOmitsZeroFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var body struct {
			Data struct {
				Attributes map[string]any `json:"attributes"`
			} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if _, present := body.Data.Attributes["library_video_url"]; present {
			t.Fatal("expected library_video_url to be omitted")
		}
		if body.Data.Attributes["description"] != "A service." {
			t.Fatalf("unexpected description: %v", body.Data.Attributes["description"])
		}
		_, _ = w.Write([]byte(`{"data":{"id":"222"}}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	err := client.UpdateEpisode(context.Background(), "222", publishing.EpisodeUpdate{Description: "A service."})
	if err != nil {
		t.Fatalf("UpdateEpisode returned error: %v", err)
	}
}

func TestUpdateEpisodeTimeNon2xxIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"bad embed"}]}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	err := client.UpdateEpisodeTime(context.Background(), "222", "t1", "2025-09-07T13:45:00Z", "<iframe></iframe>")
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}
