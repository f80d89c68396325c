package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"steeple/internal/episode"
	"steeple/internal/reconcile"
	"steeple/internal/runstore"
	"steeple/internal/schedule"
)

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Reconcile every service date from the anchor through the current week",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openRunEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			backfill, err := reconcile.NewBackfill(env.cfg, env.deps)
			if err != nil {
				return err
			}
			report, err := backfill.Run(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			printReport(cmd, report)
			if !report.OK() {
				return fmt.Errorf("backfill finished with failures (run %s)", report.RunID)
			}
			return nil
		},
	}
}

func newLiveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Reconcile the current week's service, waiting for the live broadcast",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openRunEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			live, err := reconcile.NewLive(env.cfg, env.deps)
			if err != nil {
				return err
			}
			report, err := live.Run(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			printReport(cmd, report)
			if !report.OK() {
				return fmt.Errorf("live run failed (run %s)", report.RunID)
			}
			return nil
		},
	}
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the episode record for a service date without attaching a video",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openRunEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			service, err := schedule.FromConfig(env.cfg)
			if err != nil {
				return err
			}

			date := service.CurrentWeek(time.Now().UTC())
			if strings.TrimSpace(dateFlag) != "" {
				date, err = time.Parse("2006-01-02", strings.TrimSpace(dateFlag))
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
				if date.Weekday() != service.Weekday {
					return fmt.Errorf("%s falls on %s, expected %s", dateFlag, date.Weekday(), service.Weekday)
				}
			}

			title := service.Title(date)
			existing, err := env.deps.Publishing.SearchEpisodes(cmd.Context(), title)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				return fmt.Errorf("episode %q already exists (id %s)", title, existing[0].ID)
			}

			created, err := env.deps.Publishing.CreateEpisode(cmd.Context(), title, service.PublishedToLibraryAt(date))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created episode %q (id %s)\n", created.Title, created.ID)

			times, err := env.deps.Publishing.ListEpisodeTimes(cmd.Context(), created.ID)
			if err != nil {
				return fmt.Errorf("episode created but times unavailable: %w", err)
			}
			if len(times) == 0 {
				return fmt.Errorf("episode %s has no episode time", created.ID)
			}
			markup := episode.LiveStreamMarkup(env.cfg.VideoCatalog.ChannelID)
			if err := env.deps.Publishing.UpdateEpisodeTime(cmd.Context(), created.ID, times[0].ID, service.StartsAt(date), markup); err != nil {
				return fmt.Errorf("set live-stream embed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Parked the channel live-stream embed on the episode time")
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Service date (YYYY-MM-DD); defaults to the current week")
	return cmd
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show recent reconciliation runs, or the outcomes of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				outcomes, err := store.RunOutcomes(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(outcomes) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No outcomes recorded for run %s\n", args[0])
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderOutcomesTable(outcomes))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRunsTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to list")
	return cmd
}

func printReport(cmd *cobra.Command, report *reconcile.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s): %d/%d dates reconciled\n",
		report.RunID, report.Mode, report.Succeeded(), len(report.Outcomes))
	rows := make([]runstore.Outcome, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		rows = append(rows, runstore.Outcome{
			ServiceDate: outcome.Date.Format("2006-01-02"),
			Action:      outcome.Action,
			EpisodeID:   outcome.EpisodeID,
			VideoID:     outcome.VideoID,
			Reason:      outcome.Reason,
			Detail:      outcome.Detail,
		})
	}
	fmt.Fprintln(out, renderOutcomesTable(rows))
}

func renderRunsTable(runs []runstore.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := ""
		if !run.FinishedAt.IsZero() {
			finished = run.FinishedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			run.ID,
			string(run.Mode),
			run.StartedAt.Format(time.RFC3339),
			finished,
			fmt.Sprintf("%d/%d", run.DatesOK, run.DatesTotal),
			yesNo(run.OK),
		})
	}
	return renderTable(
		[]string{"ID", "Mode", "Started", "Finished", "Dates", "OK"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func renderOutcomesTable(outcomes []runstore.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		rows = append(rows, []string{
			outcome.ServiceDate,
			string(outcome.Action),
			outcome.EpisodeID,
			outcome.VideoID,
			outcome.Reason,
			outcome.Detail,
		})
	}
	return renderTable(
		[]string{"Date", "Action", "Episode", "Video", "Reason", "Detail"},
		rows,
		nil,
	)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
