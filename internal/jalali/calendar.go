package jalali

import (
	"fmt"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// WeekdayLabels are the column headers of a Saturday-first week.
var WeekdayLabels = [7]string{"ش", "ی", "د", "س", "چ", "پ", "ج"}

// MonthLength returns the number of days in the given Jalali month.
func MonthLength(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return ptime.Date(year, ptime.Month(month), 1, 12, 0, 0, 0, time.UTC).LastMonthDay().Day()
}

// IsLeap reports whether Esfand of year has 30 days.
func IsLeap(year int) bool {
	return MonthLength(year, 12) == 30
}

// AddMonths moves d by n months. The day is clamped to the length of the
// target month, so 1403/06/31 + 1 month is 1403/07/30.
func AddMonths(d Date, n int) Date {
	idx := d.Year*12 + (d.Month - 1) + n
	year, month := idx/12, idx%12+1
	if month < 1 {
		month += 12
		year--
	}
	day := d.Day
	if last := MonthLength(year, month); day > last {
		day = last
	}
	return Date{Year: year, Month: month, Day: day}
}

// SubtractMonths moves d back by n months, clamping like AddMonths.
func SubtractMonths(d Date, n int) Date {
	return AddMonths(d, -n)
}

// Weekday returns the Saturday-first column of d: Saturday is 0 and Friday 6.
// Go numbers weekdays from Sunday, hence the shift.
func Weekday(d Date) int {
	return (int(d.Time().Weekday()) + 1) % 7
}

// StartOfMonth returns the first day of d's month.
func StartOfMonth(d Date) Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// EndOfMonth returns the last day of d's month.
func EndOfMonth(d Date) Date {
	return Date{Year: d.Year, Month: d.Month, Day: MonthLength(d.Year, d.Month)}
}

// DaysInMonth enumerates every day of d's month in order.
func DaysInMonth(d Date) []Date {
	last := MonthLength(d.Year, d.Month)
	days := make([]Date, 0, last)
	for day := 1; day <= last; day++ {
		days = append(days, Date{Year: d.Year, Month: d.Month, Day: day})
	}
	return days
}

// Cell is one slot of a month grid. Blank cells pad the first week.
type Cell struct {
	Date  Date `json:"date"`
	Blank bool `json:"blank"`
}

// MonthGrid lays out d's month on a Saturday-first week: blank cells come
// first so that day 1 sits in its weekday column, followed by every day.
func MonthGrid(d Date) []Cell {
	days := DaysInMonth(d)
	lead := Weekday(StartOfMonth(d))

	cells := make([]Cell, 0, lead+len(days))
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for _, day := range days {
		cells = append(cells, Cell{Date: day})
	}
	return cells
}

// IsSameDay reports whether t falls on d, judged in t's location.
func IsSameDay(d Date, t time.Time) bool {
	return FromTime(t) == d
}

// IsToday reports whether d is the current day.
func IsToday(d Date) bool {
	return TodayDate() == d
}

// InMonth reports whether d lies in the month of ref.
func InMonth(d, ref Date) bool {
	return d.Year == ref.Year && d.Month == ref.Month
}

// HasRecord reports whether any of recordDates denotes the day d.
func HasRecord(d Date, recordDates []string) bool {
	key := d.String()
	for _, rd := range recordDates {
		if Normalize(rd) == key {
			return true
		}
	}
	return false
}

// MonthName returns the Persian name of a month.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return ptime.Month(month).String()
}

// MonthTitle returns the calendar header for d's month, e.g. "مهر 1404".
func MonthTitle(d Date) string {
	return fmt.Sprintf("%s %d", MonthName(d.Month), d.Year)
}
