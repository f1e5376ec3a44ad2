// Package dates holds the calendar-date model: conversion between the
// date-entry and stored string forms, day arithmetic, and relative-date
// phrasing. Dates carry no time-of-day and no zone.
package dates

import (
	"fmt"
	"time"
)

const (
	// InputLayout is the form produced by date-entry controls.
	InputLayout = "2006-01-02"
	// StoredLayout is the form written to persisted documents.
	StoredLayout = "01/02/2006"
)

// Date is a single calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseError reports a date string that could not be read as a real
// calendar date. Callers refuse the mutation instead of storing it.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseInput reads the date-entry form, e.g. "2024-03-05".
func ParseInput(s string) (Date, error) { return parse(s, InputLayout) }

// ParseStored reads the persisted form, e.g. "03/05/2024".
func ParseStored(s string) (Date, error) { return parse(s, StoredLayout) }

func parse(s, layout string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, &ParseError{Input: s, Err: err}
	}
	return FromTime(t), nil
}

// FromTime truncates t to its calendar day.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Input formats d in the date-entry form.
func (d Date) Input() string { return d.time().Format(InputLayout) }

// Stored formats d in the persisted form.
func (d Date) Stored() string { return d.time().Format(StoredLayout) }

// time pins d to UTC midnight so day arithmetic never crosses a DST
// boundary.
func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Normalize converts the date-entry form to the stored form. Anything
// that is not a real calendar date is refused with a *ParseError.
func Normalize(raw string) (string, error) {
	d, err := ParseInput(raw)
	if err != nil {
		return "", err
	}
	return d.Stored(), nil
}

// dayIndex counts whole days since the Unix epoch. UTC midnight is an
// exact multiple of a day, so the division is exact for any date.
func (d Date) dayIndex() int {
	return int(d.time().Unix() / (24 * 60 * 60))
}

// DayDelta returns the number of calendar days from a to b, positive
// when b is later. DayDelta(a, b) == -DayDelta(b, a).
func DayDelta(a, b Date) int { return b.dayIndex() - a.dayIndex() }

// AddDays returns d shifted by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date { return FromTime(d.time().AddDate(0, 0, n)) }

// Before reports whether d falls on an earlier day than o. Comparison
// always goes through the day index, never the string forms.
func (d Date) Before(o Date) bool { return DayDelta(o, d) < 0 }

// After reports whether d falls on a later day than o.
func (d Date) After(o Date) bool { return DayDelta(o, d) > 0 }

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool { return DayDelta(o, d) == 0 }

// Weekday returns the day of week, Sunday-first per time.Weekday.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }
