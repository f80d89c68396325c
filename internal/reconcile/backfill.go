package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"steeple/internal/config"
	"steeple/internal/episode"
	"steeple/internal/logging"
	"steeple/internal/match"
	"steeple/internal/runstore"
	"steeple/internal/schedule"
)

// Backfill reconciles every service date from the configured anchor up to the
// current week. Each date is processed to completion before the next begins,
// and a bad date never aborts the batch.
type Backfill struct {
	cfg     *config.Config
	service schedule.Service
	lookup  *episode.Lookup
	matcher *match.Matcher
	updater *episode.Updater
	deps    Deps
	logger  *slog.Logger

	lookupPace *rate.Limiter
	searchPace *rate.Limiter
	createPace *rate.Limiter
}

// NewBackfill wires a backfill flow from validated configuration.
func NewBackfill(cfg *config.Config, deps Deps) (*Backfill, error) {
	service, err := schedule.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Backfill{
		cfg:     cfg,
		service: service,
		lookup:  episode.NewLookup(deps.Publishing, service, deps.Logger),
		matcher: match.New(deps.Catalog, cfg.VideoCatalog.MarkerPhrase, cfg.LivePollInterval(), cfg.VideoCatalog.LivePollAttempts, deps.Logger),
		updater: episode.NewUpdater(deps.Publishing, deps.Catalog, service, deps.Logger),
		deps:    deps,
		logger:  logging.NewComponentLogger(deps.Logger, "backfill"),

		lookupPace: rate.NewLimiter(rate.Every(cfg.LookupDelay()), 1),
		searchPace: rate.NewLimiter(rate.Every(cfg.SearchDelay()), 1),
		createPace: rate.NewLimiter(rate.Every(cfg.CreateDelay()), 1),
	}, nil
}

// Run walks every service date from the anchor through the most recent one
// at or before now, recording a per-date outcome in the run store.
func (b *Backfill) Run(ctx context.Context, now time.Time) (*Report, error) {
	anchor, err := b.cfg.AnchorDate()
	if err != nil {
		return nil, err
	}
	dates := schedule.Dates(anchor, b.service.CurrentWeek(now))

	runID, err := b.deps.Store.BeginRun(ctx, runstore.ModeBackfill)
	if err != nil {
		return nil, err
	}
	report := &Report{RunID: runID, Mode: runstore.ModeBackfill}
	b.logger.Info("backfill started",
		logging.String(logging.FieldRunID, runID),
		logging.Int("dates", len(dates)))

	for _, date := range dates {
		outcome := b.processDate(ctx, date)
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.record(outcome)
		if err := b.deps.Store.RecordOutcome(ctx, runID, storedOutcome(outcome)); err != nil {
			return report, err
		}
	}

	if err := b.deps.Store.FinishRun(ctx, runID, len(dates), report.Succeeded(), report.OK()); err != nil {
		return report, err
	}
	b.logger.Info("backfill finished",
		logging.String(logging.FieldRunID, runID),
		logging.Int("dates", len(dates)),
		logging.Int("succeeded", report.Succeeded()),
		logging.Bool("ok", report.OK()))
	return report, nil
}

func (b *Backfill) processDate(ctx context.Context, date time.Time) DateOutcome {
	outcome := DateOutcome{Date: date}
	dateField := logging.String(logging.FieldServiceDate, date.Format("2006-01-02"))

	if err := b.lookupPace.Wait(ctx); err != nil {
		outcome.Action = runstore.ActionFailed
		outcome.Detail = err.Error()
		return outcome
	}
	existing, err := b.lookup.Find(ctx, date)
	if err != nil {
		// Existence is unknown, so creating here could duplicate a record.
		b.logger.Warn("episode lookup failed, skipping date", dateField, logging.Error(err))
		outcome.Action = runstore.ActionUnknown
		outcome.Detail = err.Error()
		return outcome
	}
	if existing != nil {
		b.logger.Info("episode already exists", dateField,
			logging.String(logging.FieldEpisodeID, existing.ID))
		outcome.Action = runstore.ActionExisting
		outcome.EpisodeID = existing.ID
		outcome.Reason = string(existing.Reason)
		return outcome
	}

	if err := b.searchPace.Wait(ctx); err != nil {
		outcome.Action = runstore.ActionFailed
		outcome.Detail = err.Error()
		return outcome
	}
	matched, err := b.matcher.MatchDated(ctx, date)
	if err != nil {
		b.logger.Warn("video search failed, skipping date", dateField, logging.Error(err))
		outcome.Action = runstore.ActionFailed
		outcome.Detail = err.Error()
		return outcome
	}
	if matched == nil {
		b.logger.Info("no qualifying video for date", dateField)
		outcome.Action = runstore.ActionNotFound
		return outcome
	}
	outcome.VideoID = matched.Video.ID
	outcome.Reason = string(matched.Reason)

	if err := b.createPace.Wait(ctx); err != nil {
		outcome.Action = runstore.ActionFailed
		outcome.Detail = err.Error()
		return outcome
	}
	created, err := b.deps.Publishing.CreateEpisode(ctx,
		b.service.Title(date), b.service.PublishedToLibraryAt(date))
	if err != nil {
		b.logger.Warn("episode creation failed", dateField, logging.Error(err))
		outcome.Action = runstore.ActionFailed
		outcome.Detail = err.Error()
		return outcome
	}
	outcome.EpisodeID = created.ID
	b.logger.Info("episode created", dateField,
		logging.String(logging.FieldEpisodeID, created.ID),
		logging.String(logging.FieldVideoID, matched.Video.ID))

	times, err := b.deps.Publishing.ListEpisodeTimes(ctx, created.ID)
	if err != nil {
		outcome.Action = runstore.ActionFailed
		outcome.Detail = fmt.Sprintf("episode created but times unavailable: %v", err)
		return outcome
	}
	if len(times) == 0 {
		outcome.Action = runstore.ActionFailed
		outcome.Detail = "episode created but has no episode time"
		return outcome
	}

	update := b.updater.Apply(ctx, created.ID, times[0].ID, matched.Video, date)
	outcome.Action = runstore.ActionCreated
	outcome.Detail = updateDetail(update)
	return outcome
}

func storedOutcome(outcome DateOutcome) runstore.Outcome {
	return runstore.Outcome{
		ServiceDate: outcome.Date.Format("2006-01-02"),
		Action:      outcome.Action,
		EpisodeID:   outcome.EpisodeID,
		VideoID:     outcome.VideoID,
		Reason:      outcome.Reason,
		Detail:      outcome.Detail,
	}
}
