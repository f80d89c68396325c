package reconcile

import (
	"context"
	"log/slog"
	"time"

	"steeple/internal/config"
	"steeple/internal/episode"
	"steeple/internal/logging"
	"steeple/internal/match"
	"steeple/internal/runstore"
	"steeple/internal/schedule"
)

// Live reconciles the current week's service: it makes sure the episode
// record exists, parks the channel live-stream embed on it, then polls for
// the live broadcast and attaches the video once found.
type Live struct {
	cfg     *config.Config
	service schedule.Service
	lookup  *episode.Lookup
	matcher *match.Matcher
	updater *episode.Updater
	deps    Deps
	logger  *slog.Logger
}

// NewLive wires a live flow from validated configuration.
func NewLive(cfg *config.Config, deps Deps) (*Live, error) {
	service, err := schedule.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Live{
		cfg:     cfg,
		service: service,
		lookup:  episode.NewLookup(deps.Publishing, service, deps.Logger),
		matcher: match.New(deps.Catalog, cfg.VideoCatalog.MarkerPhrase, cfg.LivePollInterval(), cfg.VideoCatalog.LivePollAttempts, deps.Logger),
		updater: episode.NewUpdater(deps.Publishing, deps.Catalog, service, deps.Logger),
		deps:    deps,
		logger:  logging.NewComponentLogger(deps.Logger, "live"),
	}, nil
}

// Run processes the most recent service date at or before now. Unlike
// backfill there is only one date, so any failure ends the run.
func (l *Live) Run(ctx context.Context, now time.Time) (*Report, error) {
	date := l.service.CurrentWeek(now)

	runID, err := l.deps.Store.BeginRun(ctx, runstore.ModeLive)
	if err != nil {
		return nil, err
	}
	report := &Report{RunID: runID, Mode: runstore.ModeLive}
	l.logger.Info("live run started",
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldServiceDate, date.Format("2006-01-02")))

	outcome := l.processDate(ctx, date)
	report.record(outcome)
	if err := l.deps.Store.RecordOutcome(ctx, runID, storedOutcome(outcome)); err != nil {
		return report, err
	}
	if err := l.deps.Store.FinishRun(ctx, runID, 1, report.Succeeded(), report.OK()); err != nil {
		return report, err
	}

	if report.OK() {
		if err := l.deps.Pinger.Ping(ctx); err != nil {
			l.logger.Warn("healthcheck ping failed", logging.Error(err))
		}
	}
	l.logger.Info("live run finished",
		logging.String(logging.FieldRunID, runID),
		logging.Bool("ok", report.OK()))
	return report, nil
}

func (l *Live) processDate(ctx context.Context, date time.Time) DateOutcome {
	outcome := DateOutcome{Date: date}
	dateField := logging.String(logging.FieldServiceDate, date.Format("2006-01-02"))

	existing, err := l.lookup.Find(ctx, date)
	if err != nil {
		l.logger.Warn("episode lookup failed", dateField, logging.Error(err))
		outcome.Action = runstore.ActionUnknown
		outcome.Detail = err.Error()
		return outcome
	}

	created := false
	episodeID := ""
	if existing != nil {
		episodeID = existing.ID
		outcome.Reason = string(existing.Reason)
	} else {
		record, err := l.deps.Publishing.CreateEpisode(ctx,
			l.service.Title(date), l.service.PublishedToLibraryAt(date))
		if err != nil {
			l.logger.Warn("episode creation failed", dateField, logging.Error(err))
			outcome.Action = runstore.ActionFailed
			outcome.Detail = err.Error()
			return outcome
		}
		episodeID = record.ID
		created = true
		l.logger.Info("episode created", dateField,
			logging.String(logging.FieldEpisodeID, episodeID))
	}
	outcome.EpisodeID = episodeID

	times, err := l.deps.Publishing.ListEpisodeTimes(ctx, episodeID)
	if err != nil {
		outcome.Action = runstore.ActionFailed
		outcome.Detail = err.Error()
		return outcome
	}
	if len(times) == 0 {
		outcome.Action = runstore.ActionFailed
		outcome.Detail = "episode has no episode time"
		return outcome
	}
	timeID := times[0].ID

	if created {
		// Park the channel live-stream player so the episode page shows
		// something while the broadcast is still in progress.
		markup := episode.LiveStreamMarkup(l.cfg.VideoCatalog.ChannelID)
		if err := l.deps.Publishing.UpdateEpisodeTime(ctx, episodeID, timeID, l.service.StartsAt(date), markup); err != nil {
			l.logger.Warn("live-stream embed failed", dateField, logging.Error(err))
		}
	}

	matched, err := l.matcher.MatchLive(ctx)
	if err != nil {
		l.logger.Warn("no video found for live run", dateField, logging.Error(err))
		outcome.Action = runstore.ActionFailed
		outcome.Detail = err.Error()
		return outcome
	}
	outcome.VideoID = matched.Video.ID
	if outcome.Reason == "" {
		outcome.Reason = string(matched.Reason)
	} else {
		outcome.Reason = outcome.Reason + "," + string(matched.Reason)
	}

	update := l.updater.Apply(ctx, episodeID, timeID, matched.Video, date)
	if created {
		outcome.Action = runstore.ActionCreated
	} else {
		outcome.Action = runstore.ActionUpdated
	}
	outcome.Detail = updateDetail(update)
	return outcome
}
