package clock

import (
	"time"

	"github.com/golang-sql/civil"
)

// Clock is the only source of "now" for the service.
type Clock interface {
	Now() time.Time
}

// Simulated reports wall-clock time in a reference location with the year
// replaced by a configured value. A zero year disables the override.
type Simulated struct {
	loc    *time.Location
	year   int
	source func() time.Time
}

type Option func(*Simulated)

// WithSource replaces the underlying real-time source.
func WithSource(fn func() time.Time) Option {
	return func(s *Simulated) {
		if fn != nil {
			s.source = fn
		}
	}
}

func New(loc *time.Location, simulatedYear int, opts ...Option) *Simulated {
	if loc == nil {
		loc = time.UTC
	}
	s := &Simulated{
		loc:    loc,
		year:   simulatedYear,
		source: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulated) Now() time.Time {
	return WithYear(s.source().In(s.loc), s.year)
}

func (s *Simulated) Location() *time.Location {
	return s.loc
}

func (s *Simulated) Year() int {
	return s.year
}

// WithYear keeps month, day and time of t and swaps the year.
// February 29 becomes February 28 when the target year is not a leap year.
func WithYear(t time.Time, year int) time.Time {
	if year <= 0 || t.Year() == year {
		return t
	}
	day := t.Day()
	if t.Month() == time.February && day == 29 && !IsLeap(year) {
		day = 28
	}
	return time.Date(year, t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Today is the calendar date of c.Now() in the clock's own location.
func Today(c Clock) civil.Date {
	return civil.DateOf(c.Now())
}

// DayBounds returns [start, end) of the given calendar day in loc.
func DayBounds(d civil.Date, loc *time.Location) (time.Time, time.Time) {
	return d.In(loc), d.AddDays(1).In(loc)
}

// DaysInMonth handles leap years.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
