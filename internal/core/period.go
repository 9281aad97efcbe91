package core

import (
	"fmt"
	"time"
)

// PeriodWindower derives the window of a budget period that contains a
// reference time. It is used when a budget is created without explicit dates.
type PeriodWindower interface {
	WindowAt(ref time.Time) Window
}

// WeeklyWindower covers Monday through Sunday.
type WeeklyWindower struct{}

func (WeeklyWindower) WindowAt(ref time.Time) Window {
	offset := (int(ref.Weekday()) + 6) % 7
	start := StartOfDay(ref).AddDate(0, 0, -offset)
	return Window{Start: start, End: EndOfDay(start.AddDate(0, 0, 6))}
}

// MonthlyWindower covers the calendar month.
type MonthlyWindower struct{}

func (MonthlyWindower) WindowAt(ref time.Time) Window {
	return MonthWindow(ref)
}

// QuarterlyWindower covers the calendar quarter (Jan-Mar, Apr-Jun, ...).
type QuarterlyWindower struct{}

func (QuarterlyWindower) WindowAt(ref time.Time) Window {
	firstMonth := time.Month((int(ref.Month())-1)/3*3 + 1)
	start := time.Date(ref.Year(), firstMonth, 1, 0, 0, 0, 0, ref.Location())
	return Window{Start: start, End: EndOfDay(start.AddDate(0, 3, -1))}
}

// YearlyWindower covers the calendar year.
type YearlyWindower struct{}

func (YearlyWindower) WindowAt(ref time.Time) Window {
	start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
	return Window{Start: start, End: EndOfDay(time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, ref.Location()))}
}

var periodStrategies = map[Period]PeriodWindower{
	Weekly:    WeeklyWindower{},
	Monthly:   MonthlyWindower{},
	Quarterly: QuarterlyWindower{},
	Yearly:    YearlyWindower{},
}

// GetPeriodWindower returns the windower for a budget period.
func GetPeriodWindower(p Period) (PeriodWindower, error) {
	w, ok := periodStrategies[p]
	if !ok {
		return nil, fmt.Errorf("unknown budget period: %s", p)
	}
	return w, nil
}

// PeriodWindow is GetPeriodWindower(p).WindowAt(ref), falling back to the month.
func PeriodWindow(p Period, ref time.Time) Window {
	w, err := GetPeriodWindower(p)
	if err != nil {
		return MonthWindow(ref)
	}
	return w.WindowAt(ref)
}
