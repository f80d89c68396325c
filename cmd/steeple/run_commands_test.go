package main

import (
	"strings"
	"testing"
	"time"

	"steeple/internal/runstore"
)

func TestRenderRunsTable(t *testing.T) {
	runs := []runstore.Run{
		{
			ID:         "run-1",
			Mode:       runstore.ModeBackfill,
			StartedAt:  time.Date(2025, time.September, 7, 13, 0, 0, 0, time.UTC),
			FinishedAt: time.Date(2025, time.September, 7, 13, 5, 0, 0, time.UTC),
			DatesTotal: 3,
			DatesOK:    2,
		},
	}
	rendered := renderRunsTable(runs)
	for _, want := range []string{"run-1", "backfill", "2/3", "no"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("table missing %q:\n%s", want, rendered)
		}
	}
}

func TestRenderOutcomesTable(t *testing.T) {
	outcomes := []runstore.Outcome{
		{ServiceDate: "2025-09-07", Action: runstore.ActionCreated, EpisodeID: "ep-1", VideoID: "vid-1", Reason: "only_candidate"},
		{ServiceDate: "2025-09-14", Action: runstore.ActionNotFound},
	}
	rendered := renderOutcomesTable(outcomes)
	for _, want := range []string{"2025-09-07", "created", "vid-1", "not_found"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("table missing %q:\n%s", want, rendered)
		}
	}
}

func TestShouldSkipConfigInherited(t *testing.T) {
	root := newRootCommand()
	target, _, err := root.Find([]string{"config", "init"})
	if err != nil {
		t.Fatalf("find command: %v", err)
	}
	if !shouldSkipConfig(target) {
		t.Fatal("config init must not require a loaded config")
	}
	backfill, _, err := root.Find([]string{"backfill"})
	if err != nil {
		t.Fatalf("find command: %v", err)
	}
	if shouldSkipConfig(backfill) {
		t.Fatal("backfill requires a loaded config")
	}
}
