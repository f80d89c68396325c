package match

import (
	"context"
	"time"

	"steeple/internal/logging"
	"steeple/internal/services"
)

// MatchLive polls the catalog for an active live broadcast. Every poll
// consumes one attempt whether it errored, came back empty, or was
// unreadable; a hit returns immediately. When the attempt budget runs out
// the newest channel upload is taken as a fallback, and only when that is
// also empty does the call fail with services.ErrExhausted.
func (m *Matcher) MatchLive(ctx context.Context) (*Result, error) {
	for attempt := 1; attempt <= m.attempts; attempt++ {
		videos, err := m.catalog.SearchLive(ctx)
		if err != nil {
			m.logger.Warn("live poll failed",
				logging.Int("attempt", attempt),
				logging.Int("attempts", m.attempts),
				logging.Error(err))
		} else if len(videos) > 0 {
			m.logger.Info("live broadcast found",
				logging.String(logging.FieldVideoID, videos[0].ID),
				logging.Int("attempt", attempt))
			return &Result{Video: videos[0], Reason: ReasonLive}, nil
		} else {
			m.logger.Debug("no live broadcast yet",
				logging.Int("attempt", attempt),
				logging.Int("attempts", m.attempts))
		}
		if attempt == m.attempts {
			break
		}
		if err := m.wait(ctx); err != nil {
			return nil, err
		}
	}

	m.logger.Warn("live polling exhausted, falling back to newest upload",
		logging.Int("attempts", m.attempts))
	video, err := m.catalog.MostRecent(ctx)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, services.Wrap(services.ErrExhausted, "matcher", "live",
			"no live broadcast and no recent upload", nil)
	}
	return &Result{Video: *video, Reason: ReasonFallback}, nil
}

func (m *Matcher) wait(ctx context.Context) error {
	timer := time.NewTimer(m.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
