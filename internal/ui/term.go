package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/javiermolinar/lifecoach/internal/calendar"
)

// Color definitions for consistent styling across the UI.
var (
	// Fixed commitments: bold cyan, they never move
	colorFixed = color.New(color.FgCyan, color.Bold)

	// Flexible routines: green
	colorSoft = color.New(color.FgGreen)

	// Moves and relocations: yellow to make them pop
	colorMoved = color.New(color.FgYellow)

	// Failures
	colorError = color.New(color.FgRed, color.Bold)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

// formatEntry colors text by how movable the entry is.
func formatEntry(e *calendar.Entry, s string) string {
	if e.Category.Fixed() || !e.Flexible {
		return colorFixed.Sprint(s)
	}
	return colorSoft.Sprint(s)
}

func formatMoved(s string) string {
	return colorMoved.Sprint(s)
}

func formatError(s string) string {
	return colorError.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
