package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/lifecoach/internal/calendar"
	"github.com/javiermolinar/lifecoach/internal/timeofday"
)

// 2025-01-15 is a Wednesday.
var testDate = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New("06:30", "23:00")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func at(s string) int {
	return timeofday.MustParse(s)
}

func win(start, end string) timeofday.Window {
	return timeofday.Window{Start: at(start), End: at(end)}
}

func oneOff(id string, cat calendar.Category, start, end string) *calendar.Entry {
	return &calendar.Entry{
		ID:        id,
		Title:     id,
		Category:  cat,
		Kind:      calendar.KindOneOff,
		ValidFrom: testDate,
		ValidTo:   testDate,
		Start:     at(start),
		End:       at(end),
		Flexible:  true,
		Priority:  calendar.DefaultPriority,
	}
}

func recurring(id string, cat calendar.Category, start, end string) *calendar.Entry {
	return &calendar.Entry{
		ID:       id,
		Title:    id,
		Category: cat,
		Kind:     calendar.KindRecurring,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Start:    at(start),
		End:      at(end),
		Flexible: true,
		Priority: calendar.DefaultPriority,
	}
}

func inflexible(e *calendar.Entry) *calendar.Entry {
	e.Flexible = false
	return e
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "valid", start: "06:30", end: "23:00"},
		{name: "inverted", start: "23:00", end: "06:30", wantErr: true},
		{name: "empty", start: "09:00", end: "09:00", wantErr: true},
		{name: "bad start", start: "nine", end: "17:00", wantErr: true},
		{name: "bad end", start: "09:00", end: "5pm", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.start, tt.end)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.ActiveHours() != win(tt.start, tt.end) {
				t.Errorf("ActiveHours = %v", s.ActiveHours())
			}
		})
	}

	if _, err := New("23:00", "06:30"); !errors.Is(err, ErrInvalidHours) {
		t.Errorf("expected ErrInvalidHours, got %v", err)
	}
}
