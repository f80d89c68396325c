package reconcile

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"steeple/internal/episode"
	"steeple/internal/healthcheck"
	"steeple/internal/runstore"
	"steeple/internal/services/publishing"
	"steeple/internal/services/videocatalog"
)

// Deps bundles the external collaborators a reconciliation flow needs.
type Deps struct {
	Publishing publishing.API
	Catalog    videocatalog.API
	Store      *runstore.Store
	Pinger     healthcheck.Pinger
	Logger     *slog.Logger
}

// DateOutcome is the result for one service date within a run.
type DateOutcome struct {
	Date      time.Time
	Action    runstore.Action
	EpisodeID string
	VideoID   string
	Reason    string
	Detail    string
}

// Report summarizes one reconciliation run.
type Report struct {
	RunID    string
	Mode     runstore.Mode
	Outcomes []DateOutcome
}

// OK reports whether the run finished without any failed date.
func (r *Report) OK() bool {
	for _, outcome := range r.Outcomes {
		if outcome.Action == runstore.ActionFailed || outcome.Action == runstore.ActionUnknown {
			return false
		}
	}
	return true
}

// Succeeded counts the dates that ended in a healthy terminal action.
func (r *Report) Succeeded() int {
	count := 0
	for _, outcome := range r.Outcomes {
		switch outcome.Action {
		case runstore.ActionExisting, runstore.ActionCreated, runstore.ActionUpdated, runstore.ActionNotFound:
			count++
		}
	}
	return count
}

func (r *Report) record(outcome DateOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
}

// updateDetail condenses a per-step update report into a short note listing
// the steps that did not apply cleanly. Empty when every step succeeded.
func updateDetail(report *episode.UpdateReport) string {
	var notes []string
	appendStep := func(name string, step episode.StepResult) {
		switch step.Status {
		case episode.StepWarning:
			notes = append(notes, fmt.Sprintf("%s failed: %s", name, step.Detail))
		case episode.StepSkipped:
			notes = append(notes, fmt.Sprintf("%s skipped: %s", name, step.Detail))
		}
	}
	appendStep("embed", report.Embed)
	appendStep("library url", report.LibraryURL)
	appendStep("description", report.Description)
	return strings.Join(notes, "; ")
}
