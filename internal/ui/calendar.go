package ui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/ics"
)

func (a *App) calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Manage calendar entries",
	}
	cmd.AddCommand(a.calendarAddCmd())
	cmd.AddCommand(a.calendarTemplateCmd())
	cmd.AddCommand(a.calendarEditCmd())
	cmd.AddCommand(a.calendarDeleteCmd())
	cmd.AddCommand(a.calendarListCmd())
	cmd.AddCommand(a.calendarFreeCmd())
	cmd.AddCommand(a.calendarExportCmd())
	return cmd
}

// entryFlags are shared by add and template.
type entryFlags struct {
	start    string
	end      string
	category string
	fixed    bool
	priority int
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "Start time (HH:MM, required)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time (HH:MM, required)")
	cmd.Flags().StringVar(&f.category, "category", "", "work, meeting, appointment, workout, meal, reading, sleep or free_time")
	cmd.Flags().BoolVar(&f.fixed, "fixed", false, "Never move this entry")
	cmd.Flags().IntVar(&f.priority, "priority", 0, "Priority 1-10 (default 5)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("category")
}

func (f *entryFlags) flexible(cmd *cobra.Command) *bool {
	if !cmd.Flags().Changed("fixed") {
		return nil
	}
	v := !f.fixed
	return &v
}

func (f *entryFlags) prio(cmd *cobra.Command) *int {
	if !cmd.Flags().Changed("priority") {
		return nil
	}
	return &f.priority
}

func (a *App) calendarAddCmd() *cobra.Command {
	var (
		flags entryFlags
		date  string
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a one-off entry, moving flexible things out of its way",
		Example: `  lifecoach calendar add "Dentist" --date=tomorrow --start=15:00 --end=16:00 --category=appointment
  lifecoach calendar add "Lunch with Ana" --start=12:30 --end=13:30 --category=meal --fixed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			res, err := a.agenda.Create(context.Background(), a.owner(), agenda.CreateRequest{
				Title:    args[0],
				Date:     dateutil.Format(day),
				Start:    flags.start,
				End:      flags.end,
				Category: flags.category,
				Flexible: flags.flexible(cmd),
				Priority: flags.prio(cmd),
			})
			if err != nil {
				return errors.New(describeError(err))
			}
			PrintResult(a.out, "Created", res)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday...; default: today)")
	flags.register(cmd)
	return cmd
}

func (a *App) calendarTemplateCmd() *cobra.Command {
	var (
		flags     entryFlags
		weekdays  string
		validFrom string
		validTo   string
	)

	cmd := &cobra.Command{
		Use:   "template [title]",
		Short: "Add a recurring weekly entry",
		Long: `Add a recurring weekly entry, such as working hours or a regular workout.

Templates are stored as given; they do not move anything.`,
		Example: `  lifecoach calendar template "Work" --weekdays=mon,tue,wed,thu,fri --start=09:00 --end=17:00 --category=work
  lifecoach calendar template "Lunch" --weekdays=1,2,3,4,5 --start=12:00 --end=12:30 --category=meal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.agenda.CreateTemplate(context.Background(), a.owner(), agenda.TemplateRequest{
				Title:     args[0],
				Weekdays:  weekdays,
				ValidFrom: validFrom,
				ValidTo:   validTo,
				Start:     flags.start,
				End:       flags.end,
				Category:  flags.category,
				Flexible:  flags.flexible(cmd),
				Priority:  flags.prio(cmd),
			})
			if err != nil {
				return errors.New(describeError(err))
			}
			fmt.Fprintf(a.out, "Created recurring entry %s\n", e.ID)
			PrintEntryRow(a.out, e, titleWidth())
			return nil
		},
	}

	cmd.Flags().StringVar(&weekdays, "weekdays", "", "Days of the week (mon,wed,fri or 1,3,5; required)")
	cmd.Flags().StringVar(&validFrom, "from", "", "First valid date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&validTo, "to", "", "Last valid date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("weekdays")
	flags.register(cmd)
	return cmd
}

func (a *App) calendarEditCmd() *cobra.Command {
	var (
		title    string
		date     string
		start    string
		end      string
		category string
		fixed    bool
		priority int
	)

	cmd := &cobra.Command{
		Use:     "edit [id]",
		Short:   "Change an entry",
		Example: `  lifecoach calendar edit 3f2c... --start=10:00 --end=11:00`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch agenda.Patch
			changed := cmd.Flags().Changed
			if changed("title") {
				patch.Title = &title
			}
			if changed("date") {
				day, err := a.parseDay(date)
				if err != nil {
					return err
				}
				d := dateutil.Format(day)
				patch.Date = &d
			}
			if changed("start") {
				patch.Start = &start
			}
			if changed("end") {
				patch.End = &end
			}
			if changed("category") {
				patch.Category = &category
			}
			if changed("fixed") {
				flexible := !fixed
				patch.Flexible = &flexible
			}
			if changed("priority") {
				patch.Priority = &priority
			}

			res, err := a.agenda.Update(context.Background(), a.owner(), args[0], patch)
			if err != nil {
				return errors.New(describeError(err))
			}
			PrintResult(a.out, "Updated", res)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&date, "date", "", "New date (one-off entries only)")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM)")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "Pin (true) or release (false) the entry")
	cmd.Flags().IntVar(&priority, "priority", 0, "New priority 1-10")
	return cmd
}

func (a *App) calendarDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [id]",
		Aliases: []string{"rm"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.agenda.Delete(context.Background(), a.owner(), args[0]); err != nil {
				return errors.New(describeError(err))
			}
			fmt.Fprintf(a.out, "Deleted entry %s\n", args[0])
			return nil
		},
	}
}

func (a *App) calendarListCmd() *cobra.Command {
	var (
		from  string
		to    string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries in a date range",
		Long: `List every entry occurring within a date range (inclusive).

Without flags, lists the next 7 days starting today.`,
		Example: `  lifecoach calendar list
  lifecoach calendar list --from=2025-01-15 --to=2025-01-20`,
		RunE: func(_ *cobra.Command, _ []string) error {
			occ, err := a.agenda.List(context.Background(), a.owner(), agenda.ListRequest{
				From:  from,
				To:    to,
				Limit: limit,
			})
			if err != nil {
				return errors.New(describeError(err))
			}
			PrintOccurrences(a.out, occ)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD, defaults to 7 days from start)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to show (default 100)")
	return cmd
}

func (a *App) calendarFreeCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "free",
		Short: "Show free time for a day",
		RunE: func(_ *cobra.Command, _ []string) error {
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			windows, err := a.agenda.FreeWindows(context.Background(), a.owner(), day)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "=== Free time on %s (%s-%s) ===\n",
				formatHeader(day.Format("Monday, January 2, 2006")),
				a.config.Schedule.DayStart, a.config.Schedule.DayEnd)
			PrintWindows(a.out, windows)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (default: today)")
	return cmd
}

func (a *App) calendarExportCmd() *cobra.Command {
	var (
		from   string
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export entries as an iCalendar file",
		Example: `  lifecoach calendar export --from=2025-01-01 --to=2025-03-31 --output=lifecoach.ics`,
		RunE: func(_ *cobra.Command, _ []string) error {
			dateRange, err := dateutil.NewDateRange(from, to)
			if err != nil {
				return err
			}
			if from == "" && to == "" {
				dateRange.Start = a.agenda.Today()
				dateRange.End = dateRange.Start.AddDate(0, 0, agenda.DefaultListDays-1)
			}

			entries, err := a.agenda.Entries(context.Background(), a.owner(), dateRange.Start, dateRange.End)
			if err != nil {
				return err
			}

			w := a.out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			n, err := ics.Export(w, entries, dateRange.Start, dateRange.End, a.agenda.Now())
			if err != nil {
				return err
			}
			if w != a.out {
				fmt.Fprintf(a.out, "Exported %d entries to %s\n", n, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD, defaults to start date, or a week when both are empty)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
