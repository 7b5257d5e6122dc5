package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/summary"
)

func (a *App) weekCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show this week's calendar with booked and free time",
		Long: `Display Monday through Sunday of the ISO week containing --date,
followed by booked minutes per category, fixed versus flexible time and the
free time left within active hours.`,
		Example: `  lifecoach week
  lifecoach week --date=next-week`,
		RunE: func(_ *cobra.Command, _ []string) error {
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}

			weekSummary, err := summary.BuildWeekSummary(context.Background(), a.agenda, a.owner(), day)
			if err != nil {
				return fmt.Errorf("building week summary: %w", err)
			}

			header := fmt.Sprintf("WEEK: %s - %s", weekSummary.Start.Format("Mon Jan 2"), weekSummary.End.Format("Mon Jan 2, 2006"))
			fmt.Fprintf(a.out, "\n  %s\n", formatHeader(header))
			fmt.Fprintln(a.out, strings.Repeat("─", 74))

			if len(weekSummary.Occurrences) == 0 {
				fmt.Fprintln(a.out, "No entries this week.")
			} else {
				PrintOccurrences(a.out, weekSummary.Occurrences)
			}

			fmt.Fprintln(a.out, strings.Repeat("─", 74))
			PrintWeekStats(a.out, weekSummary.Stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day of the week to show (default: today)")
	return cmd
}

// PrintWeekStats prints the totals of a week summary.
func PrintWeekStats(w io.Writer, s summary.WeekStats) {
	fmt.Fprintf(w, "  Booked:   %s\n", formatDuration(s.BookedMinutes))
	fmt.Fprintf(w, "  Fixed:    %s\n", formatDuration(s.FixedMinutes))
	fmt.Fprintf(w, "  Flexible: %s\n", formatDuration(s.FlexibleMinutes))
	fmt.Fprintf(w, "  Free:     %s\n", formatDuration(s.FreeMinutes))

	if s.BookedMinutes > 0 {
		fmt.Fprintf(w, "  Balance:  %s\n", FlowBar(s.FlexibleMinutes, s.BookedMinutes, 20))
		fmt.Fprintf(w, "  Busiest:  %s (%s)\n", s.BusiestDay.Format("Monday"), formatDuration(s.BusiestMinutes))
	}

	for _, c := range calendar.Categories {
		if m := s.ByCategory[c]; m > 0 {
			fmt.Fprintf(w, "    %-12s %s\n", c, formatDuration(m))
		}
	}
}

// FlowBar renders the flexible share of booked time as a bar of width cells.
func FlowBar(part, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := part * width / total
	return formatMoved(strings.Repeat("█", filled)) + formatMuted(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %d%% flexible", part*100/total)
}
