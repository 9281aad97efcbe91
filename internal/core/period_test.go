package core

import (
	"testing"
	"time"
)

func TestPeriodWindow(t *testing.T) {
	// Wednesday 14 May 2025
	ref := time.Date(2025, 5, 14, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		period    Period
		wantStart string
		wantEnd   string
	}{
		{Weekly, "2025-05-12", "2025-05-18"},
		{Monthly, "2025-05-01", "2025-05-31"},
		{Quarterly, "2025-04-01", "2025-06-30"},
		{Yearly, "2025-01-01", "2025-12-31"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			w := PeriodWindow(tt.period, ref)
			if got := w.Start.Format(time.DateOnly); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := w.End.Format(time.DateOnly); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
			if !w.Start.Equal(StartOfDay(w.Start)) {
				t.Errorf("start %v is not midnight", w.Start)
			}
			if w.End.Hour() != 23 || w.End.Nanosecond() != int(999*time.Millisecond) {
				t.Errorf("end %v is not 23:59:59.999", w.End)
			}
			if !w.Contains(ref) {
				t.Errorf("window %v does not contain ref", w)
			}
		})
	}
}

func TestWeeklyWindowOnSunday(t *testing.T) {
	sunday := time.Date(2025, 5, 18, 10, 0, 0, 0, time.UTC)
	w := PeriodWindow(Weekly, sunday)
	if got := w.Start.Format(time.DateOnly); got != "2025-05-12" {
		t.Errorf("start = %s, want 2025-05-12", got)
	}
}

func TestGetPeriodWindowerUnknown(t *testing.T) {
	if _, err := GetPeriodWindower("DAILY"); err == nil {
		t.Error("GetPeriodWindower(DAILY) expected error")
	}
}

func TestMonthWindowLeapYear(t *testing.T) {
	w := MonthWindow(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	if got := w.End.Format(time.DateOnly); got != "2024-02-29" {
		t.Errorf("end = %s, want 2024-02-29", got)
	}
}

func TestWindowOverlaps(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	a := Window{Start: day(1), End: day(10)}
	tests := []struct {
		name string
		b    Window
		want bool
	}{
		{"disjoint after", Window{Start: day(11), End: day(20)}, false},
		{"touching end", Window{Start: day(10), End: day(20)}, true},
		{"inside", Window{Start: day(3), End: day(4)}, true},
		{"covering", Window{Start: day(1), End: day(31)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}
