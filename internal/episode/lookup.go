package episode

import (
	"context"
	"log/slog"
	"time"

	"steeple/internal/logging"
	"steeple/internal/schedule"
	"steeple/internal/services/publishing"
)

// SelectionReason explains how a lookup settled on a record.
type SelectionReason string

const (
	// ReasonOnlyMatch means the title search produced a single record.
	ReasonOnlyMatch SelectionReason = "only_match"
	// ReasonFirstOfMany means several records matched and the newest-first
	// head was taken; the rest are preserved as alternates.
	ReasonFirstOfMany SelectionReason = "first_of_many"
)

// Summary identifies an existing episode found by title search. When the
// search was ambiguous, Alternates carries the discarded candidates so the
// caller can decide whether the ambiguity matters.
type Summary struct {
	ID         string
	Title      string
	Reason     SelectionReason
	Alternates []publishing.EpisodeSummary
}

// Lookup resolves service dates to existing episode records by derived title.
type Lookup struct {
	api     publishing.API
	service schedule.Service
	logger  *slog.Logger
}

// NewLookup creates a Lookup.
func NewLookup(api publishing.API, service schedule.Service, logger *slog.Logger) *Lookup {
	return &Lookup{
		api:     api,
		service: service,
		logger:  logging.NewComponentLogger(logger, "lookup"),
	}
}

// Find searches for the episode whose title matches the service date. A nil
// Summary with nil error means no record exists; an error means the search
// itself failed and existence is unknown, so the caller must not create.
func (l *Lookup) Find(ctx context.Context, date time.Time) (*Summary, error) {
	title := l.service.Title(date)
	results, err := l.api.SearchEpisodes(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	summary := &Summary{
		ID:     results[0].ID,
		Title:  results[0].Title,
		Reason: ReasonOnlyMatch,
	}
	if len(results) > 1 {
		summary.Reason = ReasonFirstOfMany
		summary.Alternates = results[1:]
		l.logger.Warn("ambiguous title search, taking first result",
			logging.String(logging.FieldServiceDate, date.Format("2006-01-02")),
			logging.String(logging.FieldEpisodeID, summary.ID),
			logging.Int("alternates", len(summary.Alternates)))
	}
	return summary, nil
}
