package dateutil

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-01-15")
	if err != nil || !got.Equal(day(2025, 1, 15)) {
		t.Errorf("ParseDate(2025-01-15) = %v, %v", got, err)
	}

	got, err = ParseDate("")
	if err != nil || !got.Equal(Today(time.Now())) {
		t.Errorf("ParseDate(\"\") = %v, %v, want today", got, err)
	}

	for _, bad := range []string{"15/01/2025", "2025-1-15", "2025-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("ParseDate(%q) error = %v", bad, err)
		}
	}
}

func TestTodayIgnoresLocation(t *testing.T) {
	late := time.Date(2025, 1, 15, 23, 30, 0, 0, time.FixedZone("UTC-8", -8*3600))
	got := Today(late)
	if !got.Equal(day(2025, 1, 15)) || got.Location() != time.UTC {
		t.Errorf("Today = %v, want 2025-01-15 UTC", got)
	}
	if Format(got) != "2025-01-15" {
		t.Errorf("Format = %q", Format(got))
	}
	if !SameDay(late, got) {
		t.Error("SameDay(late, today) = false")
	}
	if SameDay(got, got.AddDate(0, 0, 1)) {
		t.Error("SameDay across midnight = true")
	}
}

func TestNewDateRange(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   error
	}{
		{name: "explicit", from: "2025-01-15", to: "2025-01-20", wantStart: day(2025, 1, 15), wantEnd: day(2025, 1, 20)},
		{name: "single day", from: "2025-01-15", wantStart: day(2025, 1, 15), wantEnd: day(2025, 1, 15)},
		{name: "bad start", from: "01-15-2025", wantErr: ErrInvalidDateFormat},
		{name: "bad end", from: "2025-01-15", to: "tomorrow", wantErr: ErrInvalidDateFormat},
		{name: "reversed", from: "2025-01-20", to: "2025-01-15", wantErr: ErrEndDateBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewDateRange(tt.from, tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !r.Start.Equal(tt.wantStart) || !r.End.Equal(tt.wantEnd) {
				t.Errorf("range = %v..%v, want %v..%v", r.Start, r.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{Start: day(2025, 1, 15), End: day(2025, 1, 17)}

	tests := []struct {
		date time.Time
		want bool
	}{
		{day(2025, 1, 14), false},
		{day(2025, 1, 15), true},
		{time.Date(2025, 1, 17, 21, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 1, 17, 22, 0, 0, 0, time.FixedZone("UTC+9", 9*3600)), true},
		{day(2025, 1, 18), false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.date); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestParseRelativeDate(t *testing.T) {
	friday := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"", day(2025, 1, 10)},
		{"Today", day(2025, 1, 10)},
		{"tomorrow", day(2025, 1, 11)},
		{"monday", day(2025, 1, 13)},
		{" thu ", day(2025, 1, 16)},
		{"friday", day(2025, 1, 17)},
		{"next-saturday", day(2025, 1, 11)},
		{"NEXT-WEEK", day(2025, 1, 17)},
		{"2025-01-10", day(2025, 1, 10)},
		{"2030-12-31", day(2030, 12, 31)},
	}
	for _, tt := range tests {
		got, err := ParseRelativeDate(tt.input, friday)
		if err != nil {
			t.Errorf("ParseRelativeDate(%q): %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseRelativeDate(%q) = %s, want %s", tt.input, Format(got), Format(tt.want))
		}
	}

	errTests := []struct {
		input string
		want  error
	}{
		{"2025-01-09", ErrDateInPast},
		{"yesterday", ErrInvalidDateFormat},
		{"next-", ErrInvalidDateFormat},
		{"next-fryday", ErrInvalidDateFormat},
		{"10/01/2025", ErrInvalidDateFormat},
	}
	for _, tt := range errTests {
		if _, err := ParseRelativeDate(tt.input, friday); !errors.Is(err, tt.want) {
			t.Errorf("ParseRelativeDate(%q) error = %v, want %v", tt.input, err, tt.want)
		}
	}
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []time.Weekday
		wantErr bool
	}{
		{name: "short names", input: "mon,wed,fri", want: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{name: "digits", input: "0,6", want: []time.Weekday{time.Sunday, time.Saturday}},
		{name: "mixed and unsorted", input: "Friday, 1 ,tue", want: []time.Weekday{time.Monday, time.Tuesday, time.Friday}},
		{name: "duplicates collapse", input: "mon,monday,1", want: []time.Weekday{time.Monday}},
		{name: "empty", input: "", want: nil},
		{name: "out of range digit", input: "7", wantErr: true},
		{name: "unknown name", input: "funday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeekdays(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWeekday) {
					t.Fatalf("got error %v, want ErrInvalidWeekday", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}

	if got := FormatWeekdays([]time.Weekday{time.Monday, time.Thursday}); got != "1,4" {
		t.Errorf("FormatWeekdays = %q, want 1,4", got)
	}
}

func TestWeekRange(t *testing.T) {
	monday := day(2025, 1, 13)
	sunday := day(2025, 1, 19)

	for _, d := range []time.Time{
		monday,
		time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC),
		time.Date(2025, 1, 19, 23, 0, 0, 0, time.FixedZone("UTC+5", 5*3600)),
	} {
		gotMon, gotSun := WeekRange(d)
		if !gotMon.Equal(monday) || !gotSun.Equal(sunday) {
			t.Errorf("WeekRange(%v) = %v, %v", d, gotMon, gotSun)
		}
	}
}
