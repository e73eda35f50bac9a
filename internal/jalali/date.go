// Package jalali converts between the YYYY/MM/DD strings stored on records and
// Persian (solar Hijri) calendar values, and builds month grids for the
// calendar view.
package jalali

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // Asia/Tehran default

	"github.com/sarrafbook/ledger/internal/numerals"
	ptime "github.com/yaa110/go-persian-calendar"
)

// ErrMalformedDate is returned by ParseStrict for text that does not denote a
// real Jalali date.
var ErrMalformedDate = errors.New("malformed jalali date")

// Date is a day in the Jalali calendar. The zero value is not a valid date.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

var (
	mu       sync.RWMutex
	now      = time.Now
	location = defaultLocation()
)

func defaultLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tehran"); err == nil {
		return loc
	}
	return time.Local
}

// SetLocation changes the zone used to decide what "today" is.
func SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	mu.Lock()
	location = loc
	mu.Unlock()
}

// SetClock replaces the clock used by Today and TodayDate. It returns a func
// that restores the previous clock.
func SetClock(fn func() time.Time) (restore func()) {
	mu.Lock()
	prev := now
	now = fn
	mu.Unlock()
	return func() {
		mu.Lock()
		now = prev
		mu.Unlock()
	}
}

func current() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return now().In(location)
}

// New builds a date without validating it.
func New(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// FromTime returns the Jalali day containing t, in t's location.
func FromTime(t time.Time) Date {
	p := ptime.New(t)
	return Date{Year: p.Year(), Month: int(p.Month()), Day: p.Day()}
}

// TodayDate returns the current Jalali day.
func TodayDate() Date {
	return FromTime(current())
}

// Today returns the current Jalali day in canonical form.
func Today() string {
	return Format(TodayDate())
}

// Valid reports whether d names a real day.
func (d Date) Valid() bool {
	if d.Year < 1 || d.Year > 9999 || d.Month < 1 || d.Month > 12 {
		return false
	}
	return d.Day >= 1 && d.Day <= MonthLength(d.Year, d.Month)
}

// String returns the canonical YYYY/MM/DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Format returns the canonical YYYY/MM/DD form of d.
func Format(d Date) string {
	return d.String()
}

// Time returns noon of d in the configured location. Noon keeps the value
// away from DST edges.
func (d Date) Time() time.Time {
	mu.RLock()
	loc := location
	mu.RUnlock()
	return ptime.Date(d.Year, ptime.Month(d.Month), d.Day, 12, 0, 0, 0, loc).Time()
}

// Before reports whether d is an earlier day than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Parse interprets text as a Jalali date. Malformed text yields today's date;
// use ParseStrict when the caller must tell the two apart.
func Parse(text string) Date {
	d, err := ParseStrict(text)
	if err != nil {
		return TodayDate()
	}
	return d
}

// ParseStrict interprets text as a Jalali date. Components are split on '/',
// may use Persian digits and may omit leading zeros. Anything but digits in a
// component, signs and inner spaces included, is rejected.
func ParseStrict(text string) (Date, error) {
	parts := strings.Split(Normalize(strings.TrimSpace(text)), "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, text)
	}

	var vals [3]int
	for i, p := range parts {
		if !digitsOnly(p) {
			return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, text)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, text)
		}
		vals[i] = n
	}

	d := Date{Year: vals[0], Month: vals[1], Day: vals[2]}
	if !d.Valid() {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, text)
	}
	return d, nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Normalize turns any textual form of a date into its comparison key: digits
// become ASCII and each component is zero padded (year to 4, month and day to
// 2). Two strings denote the same day iff their keys are equal.
func Normalize(text string) string {
	parts := strings.Split(numerals.ToLatin(text), "/")
	for i, p := range parts {
		width := 2
		if i == 0 {
			width = 4
		}
		if len(p) < width {
			parts[i] = strings.Repeat("0", width-len(p)) + p
		}
	}
	return strings.Join(parts, "/")
}

// SameDay reports whether two date strings denote the same day.
func SameDay(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
