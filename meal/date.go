package meal

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Relative is a date expressed relative to today.
type Relative int

const (
	Today Relative = iota
	Yesterday
	Tomorrow
)

type specKind int

const (
	kindRelative specKind = iota
	kindWeekday
	kindDate
)

// DateSpec is a caller supplied date: a relative token, a weekday of the
// current week or a calendar date. The zero value means today.
type DateSpec struct {
	kind     specKind
	relative Relative
	weekday  time.Weekday
	date     civil.Date
}

// RelativeDate returns a spec for r.
func RelativeDate(r Relative) DateSpec { return DateSpec{kind: kindRelative, relative: r} }

// WeekdayDate returns a spec for weekday w of the current week.
func WeekdayDate(w time.Weekday) DateSpec { return DateSpec{kind: kindWeekday, weekday: w} }

// CalendarDate returns a spec for a fixed date.
func CalendarDate(d civil.Date) DateSpec { return DateSpec{kind: kindDate, date: d} }

var relatives = map[string]Relative{
	"today":     Today,
	"yesterday": Yesterday,
	"tomorrow":  Tomorrow,
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// ParseDateSpec parses s as a relative token, an English weekday name (full
// or three letters, any case) or a YYYY-MM-DD date. The empty string is
// today.
func ParseDateSpec(s string) (DateSpec, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return RelativeDate(Today), nil
	}
	if r, ok := relatives[key]; ok {
		return RelativeDate(r), nil
	}
	if w, ok := weekdays[key]; ok {
		return WeekdayDate(w), nil
	}
	d, err := ParseDate(strings.TrimSpace(s))
	if err != nil {
		return DateSpec{}, err
	}
	return CalendarDate(d), nil
}

// Resolve turns the spec into a concrete date. Today is the calendar date of
// now in now's location; weeks start on Monday.
func (s DateSpec) Resolve(now time.Time) civil.Date {
	today := civil.DateOf(now)
	switch s.kind {
	case kindWeekday:
		// days since Monday, with Sunday as the last day of the week
		offset := (int(now.Weekday()) + 6) % 7
		target := (int(s.weekday) + 6) % 7
		return today.AddDays(target - offset)
	case kindDate:
		return s.date
	}
	switch s.relative {
	case Yesterday:
		return today.AddDays(-1)
	case Tomorrow:
		return today.AddDays(1)
	}
	return today
}

func (s DateSpec) String() string {
	switch s.kind {
	case kindWeekday:
		return strings.ToLower(s.weekday.String())
	case kindDate:
		return s.date.String()
	}
	for name, r := range relatives {
		if r == s.relative {
			return name
		}
	}
	return "today"
}
