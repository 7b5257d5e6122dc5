package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/config"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
	"github.com/javiermolinar/lifecoach/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	agenda  *agenda.Service
	config  *config.Config
	root    *cobra.Command
	out     io.Writer
	noColor bool
}

// NewApp creates a new CLI application on top of the agenda service.
func NewApp(svc *agenda.Service, cfg *config.Config) *App {
	a := &App{agenda: svc, config: cfg, out: os.Stdout}

	a.root = &cobra.Command{
		Use:   "lifecoach",
		Short: "A life coach that keeps your day in order",
		Long: `Lifecoach keeps a calendar of fixed commitments and flexible routines.

When something new lands on your day, flexible entries and planned
workouts, meals and reading sessions are moved out of its way.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				DisableColor()
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return tui.Run(a.agenda, a.owner(), a.agenda.Today())
		},
	}

	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.calendarCmd())
	a.root.AddCommand(a.planCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.askCmd())
	a.root.AddCommand(a.tuiCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "lifecoach %s (commit: %s)\n", Version, Commit)
		},
	}
}

func (a *App) tuiCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse your days interactively",
		RunE: func(_ *cobra.Command, _ []string) error {
			day, err := a.parseDay(date)
			if err != nil {
				return err
			}
			return tui.Run(a.agenda, a.owner(), day)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to open (YYYY-MM-DD, today, tomorrow, monday...)")
	return cmd
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// SetArgs overrides the command line, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// SetOutput redirects command output, for tests.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
	a.root.SetOut(w)
	a.root.SetErr(w)
}

func (a *App) owner() string {
	return a.config.User.Owner
}

// parseDay resolves a --date flag. Past dates are allowed.
func (a *App) parseDay(s string) (time.Time, error) {
	if s == "" {
		return a.agenda.Today(), nil
	}
	if d, err := dateutil.ParseDate(s); err == nil {
		return d, nil
	}
	return dateutil.ParseRelativeDate(s, a.agenda.Today())
}
