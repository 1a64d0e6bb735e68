package ingest

import (
	"math"
	"time"
	_ "time/tzdata" // request timezones must resolve on minimal images

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

const isoDate = "2006-01-02"

type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodLast7     Period = "last7"
	PeriodLast30    Period = "last30"
	PeriodThisMonth Period = "thisMonth"
	PeriodLastMonth Period = "lastMonth"
	PeriodCustom    Period = "custom"
)

// datePresets maps every non-custom period to Meta's date_preset.
var datePresets = map[Period]string{
	PeriodToday:     "today",
	PeriodYesterday: "yesterday",
	PeriodLast7:     "last_7d",
	PeriodLast30:    "last_30d",
	PeriodThisMonth: "this_month",
	PeriodLastMonth: "last_month",
}

// DefaultTimeRange is used when no usable period was given.
var DefaultTimeRange = models.DateRange{Since: "2024-01-01", Until: "2024-12-31"}

func Periods() []Period {
	return []Period{PeriodToday, PeriodYesterday, PeriodLast7, PeriodLast30, PeriodThisMonth, PeriodLastMonth, PeriodCustom}
}

// DatePreset returns Meta's preset name; ok is false for custom and unknown periods.
func (p Period) DatePreset() (string, bool) {
	s, ok := datePresets[p]
	return s, ok
}

// Location resolves an IANA name, falling back to def and then UTC.
func Location(tz, def string) *time.Location {
	for _, name := range []string{tz, def} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func rangeOf(start, end time.Time) models.DateRange {
	return models.DateRange{Since: start.Format(isoDate), Until: end.Format(isoDate)}
}

// CurrentRange gives the concrete bounds Meta uses for the period, evaluated
// at now (already in the account's timezone).
func CurrentRange(p Period, custom *models.CustomPeriod, now time.Time) models.DateRange {
	today := day(now)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	switch p {
	case PeriodToday:
		return rangeOf(today, today)
	case PeriodYesterday:
		y := today.AddDate(0, 0, -1)
		return rangeOf(y, y)
	case PeriodLast7:
		return rangeOf(today.AddDate(0, 0, -7), today.AddDate(0, 0, -1))
	case PeriodLast30:
		return rangeOf(today.AddDate(0, 0, -30), today.AddDate(0, 0, -1))
	case PeriodThisMonth:
		return rangeOf(first, today)
	case PeriodLastMonth:
		return rangeOf(first.AddDate(0, -1, 0), first.AddDate(0, 0, -1))
	case PeriodCustom:
		if custom != nil && custom.StartDate != "" && custom.EndDate != "" {
			return models.DateRange{Since: custom.StartDate, Until: custom.EndDate}
		}
	}
	return DefaultTimeRange
}

// PreviousRange is the window the current period is compared against.
// ok is false when the period has no defined predecessor.
func PreviousRange(p Period, custom *models.CustomPeriod, now time.Time) (models.DateRange, bool) {
	today := day(now)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	switch p {
	case PeriodToday:
		y := today.AddDate(0, 0, -1)
		return rangeOf(y, y), true
	case PeriodYesterday:
		d := today.AddDate(0, 0, -2)
		return rangeOf(d, d), true
	case PeriodLast7:
		end := today.AddDate(0, 0, -8)
		return rangeOf(end.AddDate(0, 0, -6), end), true
	case PeriodLast30:
		end := today.AddDate(0, 0, -31)
		return rangeOf(end.AddDate(0, 0, -29), end), true
	case PeriodThisMonth:
		return rangeOf(first.AddDate(0, -1, 0), first.AddDate(0, 0, -1)), true
	case PeriodLastMonth:
		return rangeOf(first.AddDate(0, -2, 0), first.AddDate(0, -1, -1)), true
	case PeriodCustom:
		if custom == nil {
			return models.DateRange{}, false
		}
		start, err1 := time.Parse(isoDate, custom.StartDate)
		end, err2 := time.Parse(isoDate, custom.EndDate)
		if err1 != nil || err2 != nil || end.Before(start) {
			return models.DateRange{}, false
		}
		diff := int(math.Ceil(end.Sub(start).Hours() / 24))
		prevEnd := start.AddDate(0, 0, -1)
		return rangeOf(prevEnd.AddDate(0, 0, -diff), prevEnd), true
	}
	return models.DateRange{}, false
}
