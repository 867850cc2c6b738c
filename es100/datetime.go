package es100

import (
	"fmt"
	"time"
)

// DateTime is a calendar reading as decoded from the time registers. Year
// holds the last two digits of the year.
type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// Time converts dt to a time.Time in the given location, assuming the 21st
// century.
func (dt DateTime) Time(loc *time.Location) time.Time {
	return time.Date(2000+dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, dt.Second, 0, loc)
}

func (dt DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", 2000+dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
}

// NextDST is the date and hour of the next daylight saving time transition.
type NextDST struct {
	Month int
	Day   int
	Hour  int
}

func (n NextDST) String() string {
	return fmt.Sprintf("%02d-%02d %02d:00", n.Month, n.Day, n.Hour)
}

// the calendar does not know about leap years, February always has 28 days
var daysIn = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// monthLength wraps month into 1-12 before looking it up, so months that
// are still out of range in the middle of normalization use the length of
// the calendar month they will end up as.
func monthLength(month int) int {
	i := (month - 1) % 12
	if i < 0 {
		i += 12
	}
	return daysIn[i]
}

// Normalize adds hourOffset hours to dt and carries every field back into
// range, from seconds up to years. Fields may start out of range in either
// direction.
func Normalize(dt DateTime, hourOffset int) DateTime {
	dt.Hour += hourOffset

	for dt.Second < 0 {
		dt.Second += 60
		dt.Minute--
	}
	for dt.Second >= 60 {
		dt.Second -= 60
		dt.Minute++
	}

	for dt.Minute < 0 {
		dt.Minute += 60
		dt.Hour--
	}
	for dt.Minute >= 60 {
		dt.Minute -= 60
		dt.Hour++
	}

	for dt.Hour < 0 {
		dt.Hour += 24
		dt.Day--
	}
	for dt.Hour >= 24 {
		dt.Hour -= 24
		dt.Day++
	}

	// days are 1-based, day 0 is the last day of the previous month
	for dt.Day < 1 {
		dt.Month--
		dt.Day += monthLength(dt.Month)
	}
	for dt.Day > monthLength(dt.Month) {
		dt.Day -= monthLength(dt.Month)
		dt.Month++
	}

	for dt.Month > 12 {
		dt.Month -= 12
		dt.Year++
	}
	for dt.Month < 1 {
		dt.Month += 12
		dt.Year--
	}
	return dt
}
