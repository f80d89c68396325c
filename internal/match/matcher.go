package match

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"steeple/internal/logging"
	"steeple/internal/services/videocatalog"
)

// Window knobs for dated matching. The search window is wider than the
// acceptance window so a video uploaded a few days late still surfaces as a
// candidate even when it no longer qualifies.
const (
	searchWindowDays = 4
	maxDayDiff       = 3
)

// Reason explains how a match was selected.
type Reason string

const (
	// ReasonOnlyCandidate means a single qualifying video existed.
	ReasonOnlyCandidate Reason = "only_candidate"
	// ReasonClosest means several videos qualified and the one with the
	// strictly smallest day distance won.
	ReasonClosest Reason = "closest"
	// ReasonLive means a live broadcast was found while polling.
	ReasonLive Reason = "live"
	// ReasonFallback means polling exhausted its attempts and the newest
	// channel upload was taken instead.
	ReasonFallback Reason = "fallback"
)

// Result is a selected video together with how and why it was chosen. For
// dated matches DayDiff is the absolute day distance between the video's
// publish date and the service date. Alternates carries qualifying videos
// that lost the selection so callers can surface the ambiguity.
type Result struct {
	Video      videocatalog.Video
	DayDiff    int
	Reason     Reason
	Alternates []videocatalog.Video
}

// Matcher selects the catalog video belonging to a service date.
type Matcher struct {
	catalog      videocatalog.API
	markerFolded string
	interval     time.Duration
	attempts     int
	logger       *slog.Logger
	folder       cases.Caser
}

// New creates a Matcher. The marker phrase is matched case-insensitively
// against candidate titles; interval and attempts bound live polling.
func New(catalog videocatalog.API, marker string, interval time.Duration, attempts int, logger *slog.Logger) *Matcher {
	folder := cases.Fold()
	return &Matcher{
		catalog:      catalog,
		markerFolded: folder.String(marker),
		interval:     interval,
		attempts:     attempts,
		logger:       logging.NewComponentLogger(logger, "matcher"),
		folder:       folder,
	}
}

// MatchDated searches the days around a past service date and picks the
// qualifying video closest to it. A video qualifies when its title carries
// the marker phrase and its publish date is within three days of the
// service. A nil Result with nil error means nothing qualified; an error
// means the search itself failed.
func (m *Matcher) MatchDated(ctx context.Context, serviceDate time.Time) (*Result, error) {
	from := serviceDate.AddDate(0, 0, -searchWindowDays)
	to := serviceDate.AddDate(0, 0, searchWindowDays)
	videos, err := m.catalog.SearchPublishedWindow(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var (
		best       videocatalog.Video
		haveBest   bool
		bestDiff   int
		qualifying []videocatalog.Video
	)
	for _, video := range videos {
		if !strings.Contains(m.folder.String(video.Title), m.markerFolded) {
			continue
		}
		diff := dayDistance(video.PublishedAt, serviceDate)
		if diff > maxDayDiff {
			continue
		}
		qualifying = append(qualifying, video)
		// A tie keeps the earlier candidate, which the newest-first
		// ordering makes the most recently published one.
		if !haveBest || diff < bestDiff {
			best = video
			bestDiff = diff
			haveBest = true
		}
	}
	if !haveBest {
		return nil, nil
	}

	result := &Result{Video: best, DayDiff: bestDiff, Reason: ReasonOnlyCandidate}
	for _, video := range qualifying {
		if video.ID != best.ID {
			result.Alternates = append(result.Alternates, video)
		}
	}
	if len(result.Alternates) > 0 {
		result.Reason = ReasonClosest
		m.logger.Warn("multiple qualifying videos, keeping the closest",
			logging.String(logging.FieldServiceDate, serviceDate.Format("2006-01-02")),
			logging.String(logging.FieldVideoID, best.ID),
			logging.Int("day_diff", bestDiff),
			logging.Int("alternates", len(result.Alternates)))
	} else {
		m.logger.Info("candidate selected",
			logging.String(logging.FieldServiceDate, serviceDate.Format("2006-01-02")),
			logging.String(logging.FieldVideoID, best.ID),
			logging.Int("day_diff", bestDiff))
	}
	return result, nil
}

func dayDistance(published, serviceDate time.Time) int {
	a := truncateToDay(published)
	b := truncateToDay(serviceDate)
	diff := int(a.Sub(b).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
