package episode

import (
	"context"
	"log/slog"
	"time"

	"steeple/internal/logging"
	"steeple/internal/schedule"
	"steeple/internal/services/publishing"
	"steeple/internal/services/videocatalog"
)

// StepStatus classifies the outcome of one update step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepWarning StepStatus = "warning"
	StepSkipped StepStatus = "skipped"
)

// StepResult records one update step. Detail is empty on success.
type StepResult struct {
	Status StepStatus
	Detail string
}

// UpdateReport collects the per-step outcomes of attaching a video to an
// episode. Steps are independent; a warning in one does not stop the others.
type UpdateReport struct {
	EpisodeID   string
	VideoID     string
	Embed       StepResult
	LibraryURL  StepResult
	Description StepResult
}

// Succeeded reports whether every step finished without a warning.
func (r *UpdateReport) Succeeded() bool {
	return r.Embed.Status != StepWarning &&
		r.LibraryURL.Status != StepWarning &&
		r.Description.Status != StepWarning
}

// Updater pushes a matched catalog video into an existing episode record.
type Updater struct {
	publishing publishing.API
	catalog    videocatalog.API
	service    schedule.Service
	logger     *slog.Logger
}

// NewUpdater creates an Updater.
func NewUpdater(pub publishing.API, catalog videocatalog.API, service schedule.Service, logger *slog.Logger) *Updater {
	return &Updater{
		publishing: pub,
		catalog:    catalog,
		service:    service,
		logger:     logging.NewComponentLogger(logger, "updater"),
	}
}

// Apply runs the three update steps for one episode: set the player embed on
// the episode time, set the library watch URL and publish timestamp, and copy
// the catalog description when one exists. Each step fails independently and
// is recorded in the report rather than aborting the rest.
func (u *Updater) Apply(ctx context.Context, episodeID, timeID string, video videocatalog.Video, date time.Time) *UpdateReport {
	report := &UpdateReport{EpisodeID: episodeID, VideoID: video.ID}

	err := u.publishing.UpdateEpisodeTime(ctx, episodeID, timeID, u.service.StartsAt(date), EmbedMarkup(video.ID))
	report.Embed = stepResult(err)
	u.logStep("episode time embed", episodeID, video.ID, err)

	err = u.publishing.UpdateEpisode(ctx, episodeID, publishing.EpisodeUpdate{
		LibraryVideoURL:      WatchURL(video.ID),
		PublishedToLibraryAt: u.service.PublishedToLibraryAt(date),
	})
	report.LibraryURL = stepResult(err)
	u.logStep("library url", episodeID, video.ID, err)

	report.Description = u.applyDescription(ctx, episodeID, video.ID)
	return report
}

func (u *Updater) applyDescription(ctx context.Context, episodeID, videoID string) StepResult {
	description, err := u.catalog.VideoDescription(ctx, videoID)
	if err != nil {
		u.logStep("description fetch", episodeID, videoID, err)
		return StepResult{Status: StepSkipped, Detail: err.Error()}
	}
	if description == "" {
		return StepResult{Status: StepSkipped, Detail: "catalog video has no description"}
	}
	err = u.publishing.UpdateEpisode(ctx, episodeID, publishing.EpisodeUpdate{Description: description})
	u.logStep("description", episodeID, videoID, err)
	return stepResult(err)
}

func stepResult(err error) StepResult {
	if err != nil {
		return StepResult{Status: StepWarning, Detail: err.Error()}
	}
	return StepResult{Status: StepOK}
}

func (u *Updater) logStep(step, episodeID, videoID string, err error) {
	if err != nil {
		u.logger.Warn("update step failed",
			logging.String("step", step),
			logging.String(logging.FieldEpisodeID, episodeID),
			logging.String(logging.FieldVideoID, videoID),
			logging.Error(err))
		return
	}
	u.logger.Debug("update step applied",
		logging.String("step", step),
		logging.String(logging.FieldEpisodeID, episodeID),
		logging.String(logging.FieldVideoID, videoID))
}
