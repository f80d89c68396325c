package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"steeple/internal/logging"
	"steeple/internal/services"
	"steeple/internal/services/videocatalog"
)

type fakeCatalog struct {
	windowVideos []videocatalog.Video
	windowErr    error
	windowCalls  int
	windowFrom   time.Time
	windowTo     time.Time

	liveResponses [][]videocatalog.Video
	liveErrs      []error
	liveCalls     int

	mostRecent    *videocatalog.Video
	mostRecentErr error
}

func (f *fakeCatalog) SearchPublishedWindow(ctx context.Context, from, to time.Time) ([]videocatalog.Video, error) {
	f.windowCalls++
	f.windowFrom = from
	f.windowTo = to
	return f.windowVideos, f.windowErr
}

func (f *fakeCatalog) SearchLive(ctx context.Context) ([]videocatalog.Video, error) {
	call := f.liveCalls
	f.liveCalls++
	var err error
	if call < len(f.liveErrs) {
		err = f.liveErrs[call]
	}
	var videos []videocatalog.Video
	if call < len(f.liveResponses) {
		videos = f.liveResponses[call]
	}
	return videos, err
}

func (f *fakeCatalog) MostRecent(ctx context.Context) (*videocatalog.Video, error) {
	return f.mostRecent, f.mostRecentErr
}

func (f *fakeCatalog) VideoDescription(ctx context.Context, videoID string) (string, error) {
	return "", nil
}

func video(id, title, published string) videocatalog.Video {
	t, _ := time.Parse("2006-01-02", published)
	return videocatalog.Video{ID: id, Title: title, PublishedAt: t}
}

func newMatcher(catalog videocatalog.API) *Matcher {
	return New(catalog, "Sunday Service", time.Millisecond, 3, logging.NewNop())
}

func serviceDate() time.Time {
	return time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC)
}

func TestMatchDatedSearchWindow(t *testing.T) {
	catalog := &fakeCatalog{}
	if _, err := newMatcher(catalog).MatchDated(context.Background(), serviceDate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := catalog.windowFrom.Format("2006-01-02"); got != "2025-09-03" {
		t.Fatalf("window from = %s", got)
	}
	if got := catalog.windowTo.Format("2006-01-02"); got != "2025-09-11" {
		t.Fatalf("window to = %s", got)
	}
}

func TestMatchDatedPicksClosest(t *testing.T) {
	catalog := &fakeCatalog{windowVideos: []videocatalog.Video{
		video("late", "Sunday Service live", "2025-09-09"),
		video("on-day", "Sunday Service September 7", "2025-09-07"),
		video("early", "Sunday Service rehearsal", "2025-09-05"),
	}}
	result, err := newMatcher(catalog).MatchDated(context.Background(), serviceDate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Video.ID != "on-day" || result.DayDiff != 0 {
		t.Fatalf("result = %+v", result)
	}
	if result.Reason != ReasonClosest {
		t.Fatalf("reason = %q", result.Reason)
	}
	if len(result.Alternates) != 2 {
		t.Fatalf("alternates = %+v", result.Alternates)
	}
}

func TestMatchDatedTieKeepsFirstScanned(t *testing.T) {
	// The catalog returns newest first, so on a tie the newer video stays.
	catalog := &fakeCatalog{windowVideos: []videocatalog.Video{
		video("newer", "Sunday Service", "2025-09-08"),
		video("older", "Sunday Service", "2025-09-06"),
	}}
	result, err := newMatcher(catalog).MatchDated(context.Background(), serviceDate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Video.ID != "newer" {
		t.Fatalf("expected first scanned to win the tie, got %q", result.Video.ID)
	}
}

func TestMatchDatedMarkerIsCaseInsensitive(t *testing.T) {
	catalog := &fakeCatalog{windowVideos: []videocatalog.Video{
		video("shouting", "SUNDAY SERVICE 9/7", "2025-09-07"),
	}}
	result, err := newMatcher(catalog).MatchDated(context.Background(), serviceDate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Video.ID != "shouting" {
		t.Fatalf("result = %+v", result)
	}
	if result.Reason != ReasonOnlyCandidate {
		t.Fatalf("reason = %q", result.Reason)
	}
}

func TestMatchDatedKeywordBeatsProximity(t *testing.T) {
	// A closer video without the marker phrase must lose to a farther one
	// that carries it.
	catalog := &fakeCatalog{windowVideos: []videocatalog.Video{
		video("part-one", "Sunday Service Pt.1", "2025-09-12"),
		video("midweek", "Midweek Talk", "2025-09-07"),
		video("shouted", "SUNDAY SERVICE", "2025-09-09"),
	}}
	result, err := newMatcher(catalog).MatchDated(context.Background(), serviceDate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Video.ID != "shouted" || result.DayDiff != 2 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Alternates) != 0 {
		t.Fatalf("non-qualifying videos must not appear as alternates: %+v", result.Alternates)
	}
}

func TestMatchDatedRejectsOutsideAcceptanceWindow(t *testing.T) {
	catalog := &fakeCatalog{windowVideos: []videocatalog.Video{
		video("too-far", "Sunday Service", "2025-09-11"),
		video("unrelated", "Wednesday Bible Study", "2025-09-07"),
	}}
	result, err := newMatcher(catalog).MatchDated(context.Background(), serviceDate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected no match, got %+v", result)
	}
}

func TestMatchDatedSearchErrorPropagates(t *testing.T) {
	catalog := &fakeCatalog{
		windowErr: services.Wrap(services.ErrTransport, "videocatalog", "search", "window", errors.New("503")),
	}
	_, err := newMatcher(catalog).MatchDated(context.Background(), serviceDate())
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestMatchLiveReturnsOnFirstHit(t *testing.T) {
	catalog := &fakeCatalog{liveResponses: [][]videocatalog.Video{
		{video("live-1", "Sunday Service LIVE", "2025-09-07")},
	}}
	result, err := newMatcher(catalog).MatchLive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Video.ID != "live-1" || result.Reason != ReasonLive {
		t.Fatalf("result = %+v", result)
	}
	if catalog.liveCalls != 1 {
		t.Fatalf("expected a single poll, got %d", catalog.liveCalls)
	}
}

func TestMatchLivePollErrorsConsumeAttempts(t *testing.T) {
	transient := services.Wrap(services.ErrTransport, "videocatalog", "search", "live", errors.New("timeout"))
	catalog := &fakeCatalog{
		liveErrs:      []error{transient, transient},
		liveResponses: [][]videocatalog.Video{nil, nil, {video("live-3", "Sunday Service", "2025-09-07")}},
	}
	result, err := newMatcher(catalog).MatchLive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Video.ID != "live-3" {
		t.Fatalf("result = %+v", result)
	}
	if catalog.liveCalls != 3 {
		t.Fatalf("expected three polls, got %d", catalog.liveCalls)
	}
}

func TestMatchLiveFallsBackToMostRecent(t *testing.T) {
	fallback := video("recent", "Sunday Service", "2025-09-07")
	catalog := &fakeCatalog{mostRecent: &fallback}
	result, err := newMatcher(catalog).MatchLive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Video.ID != "recent" || result.Reason != ReasonFallback {
		t.Fatalf("result = %+v", result)
	}
	if catalog.liveCalls != 3 {
		t.Fatalf("expected the full attempt budget, got %d", catalog.liveCalls)
	}
}

func TestMatchLiveExhaustedWithoutFallback(t *testing.T) {
	catalog := &fakeCatalog{}
	_, err := newMatcher(catalog).MatchLive(context.Background())
	if !errors.Is(err, services.ErrExhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
}

func TestMatchLiveHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	catalog := &fakeCatalog{}
	matcher := New(catalog, "Sunday Service", time.Minute, 3, logging.NewNop())
	_, err := matcher.MatchLive(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if catalog.liveCalls != 1 {
		t.Fatalf("expected one poll before the wait, got %d", catalog.liveCalls)
	}
}
