package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/dateutil"
)

var errQuickAddFormat = errors.New("expected: <title> HH:MM-HH:MM <category>")

// parseQuickAdd turns "Lunch with Ana 12:00-12:30 meal" into a create request on date.
// A trailing "!" on the category pins the entry ("meal!").
func parseQuickAdd(input string, date time.Time) (agenda.CreateRequest, error) {
	fields := strings.Fields(input)
	if len(fields) < 3 {
		return agenda.CreateRequest{}, errQuickAddFormat
	}

	catToken := fields[len(fields)-1]
	pinned := strings.HasSuffix(catToken, "!")
	category, err := calendar.ParseCategory(strings.TrimSuffix(catToken, "!"))
	if err != nil {
		return agenda.CreateRequest{}, fmt.Errorf("unknown category %q", catToken)
	}

	start, end, ok := strings.Cut(fields[len(fields)-2], "-")
	if !ok || start == "" || end == "" {
		return agenda.CreateRequest{}, errQuickAddFormat
	}

	req := agenda.CreateRequest{
		Title:    strings.Join(fields[:len(fields)-2], " "),
		Date:     dateutil.Format(date),
		Start:    start,
		End:      end,
		Category: string(category),
	}
	if pinned {
		flexible := false
		req.Flexible = &flexible
	}
	return req, nil
}
