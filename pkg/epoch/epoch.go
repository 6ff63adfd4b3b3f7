// Package epoch converts calendar dates to the time labels GNSS archives use
// in file names: GPS week/weekday and day-of-year.
package epoch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/gnssget/pkg/errors"
)

// gpsEpoch is the start of GPS time, 1980-01-06 (a Sunday).
var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// Date is a calendar day. It carries no time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalising out-of-range values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar day of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// String renders d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// daysBetween counts whole days from a to b. It works on Unix seconds since
// time.Duration saturates about 292 years out.
func daysBetween(a, b time.Time) int {
	return int(b.Unix()-a.Unix()) / secondsPerDay
}

// GPSWeekday returns the GPS week number and the day within that week (0 = Sunday).
func GPSWeekday(d Date) (week, weekday int) {
	days := daysBetween(gpsEpoch, d.Time())
	week = floorDiv(days, 7)
	weekday = days - week*7
	return week, weekday
}

// FromGPSWeekday is the inverse of GPSWeekday.
func FromGPSWeekday(week, weekday int) Date {
	return FromTime(gpsEpoch.AddDate(0, 0, week*7+weekday))
}

// DayOfYear returns the 1-based ordinal of d within its year.
func DayOfYear(d Date) int {
	return d.Time().YearDay()
}

// FromDayOfYear returns the date of the given 1-based day in year.
func FromDayOfYear(year, doy int) Date {
	return NewDate(year, time.January, doy)
}

// IsLeap reports whether year has 366 days.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ParseDate accepts YYYY-MM-DD or the GNSS notation YYYY-DDD (year and day-of-year).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return FromTime(t), nil
	}

	yearPart, doyPart, ok := strings.Cut(s, "-")
	if !ok || len(yearPart) != 4 || len(doyPart) != 3 {
		return Date{}, fmt.Errorf("%w: %q (want YYYY-MM-DD or YYYY-DDD)", errors.ErrInvalidDate, s)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q: %w", errors.ErrInvalidDate, s, err)
	}
	doy, err := strconv.Atoi(doyPart)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q: %w", errors.ErrInvalidDate, s, err)
	}
	limit := 365
	if IsLeap(year) {
		limit = 366
	}
	if doy < 1 || doy > limit {
		return Date{}, fmt.Errorf("%w: %q: day-of-year out of range", errors.ErrInvalidDate, s)
	}
	return FromDayOfYear(year, doy), nil
}

// Range returns every date from "from" to "to", both inclusive.
// An inverted range yields no dates.
func Range(from, to Date) []Date {
	var out []Date
	for d := from; !to.Before(d); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
