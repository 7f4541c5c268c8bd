package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/trainer/internal/core"
)

func calendarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Show the training agenda grouped by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := screen(app, core.TrainingKind, app.Trainings)
			if err := refresh(cmd.Context(), sc); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			days := core.GroupByDay(core.CalendarEvents(sc.State().Items(), core.DisplayLocation()))
			if len(days) == 0 {
				fmt.Fprintln(out, headerStyle.Render("No sessions scheduled"))
				return nil
			}
			for _, day := range days {
				fmt.Fprintln(out, dayStyle.Render(day.Label()))
				for _, e := range day.Events {
					fmt.Fprintf(out, "  %s-%s  %s\n", e.Start.Format("15:04"), e.End.Format("15:04"), e.Title)
				}
			}
			return nil
		},
	}
}

func statsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show total minutes per activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := screen(app, core.TrainingKind, app.Trainings)
			if err := refresh(cmd.Context(), sc); err != nil {
				return err
			}
			totals := core.ActivityTotals(sc.State().Items())
			widths := core.BarWidths(totals)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, columnStyle.Render("Activity")+"\t"+columnStyle.Render("Minutes")+"\t"+columnStyle.Render("Sessions")+"\t")
			for i, t := range totals {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", t.Activity, t.Minutes, t.Sessions, bar(widths[i]))
			}
			return tw.Flush()
		},
	}
}

func auditCmd(app *App) *cobra.Command {
	var (
		kind   string
		action string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audited mutations",
		Long:  "Show recent audited mutations. Entries persist across runs only when DATABASE_URL is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.Audit == nil {
				return errors.New("no audit store configured")
			}
			entries, err := app.Audit.Recent(cmd.Context(), core.AuditFilter{
				Kind:   kind,
				Action: core.AuditAction(action),
				Limit:  limit,
			})
			if err != nil {
				return fmt.Errorf("read audit log: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, headerStyle.Render("No audit entries"))
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Time\tAction\tSeverity\tKind\tID\tSummary")
			loc := core.DisplayLocation()
			for _, e := range entries {
				id := "-"
				if e.RecordID > 0 {
					id = strconv.FormatInt(e.RecordID, 10)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.In(loc).Format(core.DateLayout), e.Action, e.Severity, e.Kind, id, e.Summary)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Only entries for this kind (customers, trainings, backend)")
	cmd.Flags().StringVar(&action, "action", "", "Only this action (create, update, delete, reset)")
	cmd.Flags().IntVarP(&limit, "limit", "n", core.DefaultAuditLimit, "Maximum entries")
	return cmd
}

func resetCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the backend's demo data",
		Long:  "Restore the backend's demo data. Every customer and training is replaced.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset replaces all backend data; pass --yes to confirm")
			}
			if app.Resetter == nil {
				return errors.New("reset is not available")
			}
			if err := app.Resetter.Reset(cmd.Context()); err != nil {
				um := core.MapError(err)
				return fmt.Errorf("%s %s (%s)", um.Message, um.Action, um.Code)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Backend data reset"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")
	return cmd
}
