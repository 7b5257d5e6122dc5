package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lifecoach/internal/plan"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

func (a *App) planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage the daily plan of workouts, meals and reading",
		Long: `A daily plan holds at most one workout, any number of meals and at most
one reading session. When a calendar change lands on a planned item, the
item is moved to the next free slot.`,
	}
	cmd.AddCommand(a.planInitCmd())
	cmd.AddCommand(a.planAddCmd())
	cmd.AddCommand(a.planShowCmd())
	cmd.AddCommand(a.planDoneCmd())
	cmd.AddCommand(a.planReconcileCmd())
	return cmd
}

func (a *App) planInitCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty plan for a day",
		RunE: func(_ *cobra.Command, _ []string) error {
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			p, err := a.agenda.InitPlan(context.Background(), a.owner(), day)
			if err != nil {
				return err
			}
			PrintPlan(a.out, p)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date (default: today)")
	return cmd
}

func (a *App) planAddCmd() *cobra.Command {
	var (
		date     string
		at       string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "add [workout|meal|reading] [title]",
		Short: "Add an item to a day's plan",
		Long: `Add a workout, meal or reading session to a day's plan.

Meals always last 30 minutes. The plan is created when missing.`,
		Example: `  lifecoach plan add workout "Run 5k" --at=18:00 --duration=45
  lifecoach plan add meal "Lunch" --at=12:30`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			kind, err := plan.ParseKind(args[0])
			if err != nil {
				return err
			}
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			item, err := a.agenda.AddPlanItem(context.Background(), a.owner(), day, kind, args[1], at, duration)
			if err != nil {
				if errors.Is(err, plan.ErrDuplicateItem) {
					return fmt.Errorf("the plan already has a %s", kind)
				}
				return err
			}
			fmt.Fprintf(a.out, "Added %s %q at %s (%s)\n", item.Kind, item.Title, item.Window(), item.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (default: today)")
	cmd.Flags().StringVar(&at, "at", "", "Start time (HH:MM, required)")
	cmd.Flags().IntVar(&duration, "duration", 60, "Duration in minutes (ignored for meals)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func (a *App) planShowCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a day's calendar, plan and free time",
		RunE: func(_ *cobra.Command, _ []string) error {
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			view, err := a.agenda.Day(context.Background(), a.owner(), day)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "=== %s ===\n", formatHeader(day.Format("Monday, January 2, 2006")))
			if len(view.Entries) == 0 {
				fmt.Fprintln(a.out, "  No calendar entries.")
			}
			maxTitle := titleWidth()
			for _, e := range view.Entries {
				PrintEntryRow(a.out, e, maxTitle)
			}
			fmt.Fprintln(a.out)

			if view.Plan == nil {
				fmt.Fprintln(a.out, formatMuted("No plan for this day. Create one with 'lifecoach plan init'."))
			} else {
				PrintPlan(a.out, view.Plan)
			}
			fmt.Fprintln(a.out)

			fmt.Fprintln(a.out, formatHeader("Free time"))
			PrintWindows(a.out, view.Free)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date (default: today)")
	return cmd
}

func (a *App) planDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [item-id]",
		Short: "Mark a plan item as done so it is never moved",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.agenda.MarkDone(context.Background(), a.owner(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Marked %s as done\n", args[0])
			return nil
		},
	}
}

func (a *App) planReconcileCmd() *cobra.Command {
	var (
		date  string
		start string
		end   string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Move plan items out of a time window",
		Long: `Move every pending plan item that overlaps the window to the next free
slot after it, as if a new calendar entry had landed there.`,
		Example: `  lifecoach plan reconcile --start=17:00 --end=18:30`,
		RunE: func(_ *cobra.Command, _ []string) error {
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			s, err := timeofday.Parse(start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			e, err := timeofday.Parse(end)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}

			res, err := a.agenda.Reconcile(context.Background(), a.owner(), day, timeofday.Window{Start: s, End: e})
			if err != nil {
				return errors.New(describeError(err))
			}
			if len(res.Moves) == 0 && len(res.Unplaced) == 0 {
				fmt.Fprintln(a.out, "Nothing to move.")
				return nil
			}
			PrintMoves(a.out, res.Moves, res.Unplaced)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Window start (HH:MM, required)")
	cmd.Flags().StringVar(&end, "end", "", "Window end (HH:MM, required)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
