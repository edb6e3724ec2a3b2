package moveo

import (
	"errors"
	"time"
)

// ErrInvalidPeriod is returned for a report period other than week, month or all.
var ErrInvalidPeriod = errors.New("invalid period: use week, month or all")

// Period names a look-back window ending now.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod validates a period name. An empty string means PeriodAll.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodAll, nil
	case PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Days is the length of the period's window.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	default:
		return 90
	}
}

// Window is an inclusive creation-time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor returns the window of p ending at now.
func WindowFor(p Period, now time.Time) Window {
	return Window{
		Start: now.AddDate(0, 0, -p.Days()),
		End:   now,
	}
}
