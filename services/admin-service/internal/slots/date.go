package slots

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day and no timezone component.
// Weekday and blackout comparisons work on Date values only, so a tenant's
// "2026-03-01" means the same day regardless of where the server runs.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return DateOf(t), nil
}

// DateOf extracts the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// At returns the instant of the given minute-of-day on this date in loc.
func (d Date) At(minute int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, minute/60, minute%60, 0, 0, loc)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.At(0, time.UTC).AddDate(0, 0, n))
}

// DaysUntil returns the number of calendar days from d to other, negative
// when other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.At(0, time.UTC).Sub(d.At(0, time.UTC)) / (24 * time.Hour))
}

// Weekday follows the Sunday=0 .. Saturday=6 convention.
func (d Date) Weekday() time.Weekday {
	return d.At(0, time.UTC).Weekday()
}

// Label renders the operator-facing day heading, e.g. "Friday, January 2".
func (d Date) Label() string {
	return d.At(0, time.UTC).Format("Monday, January 2")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid date literal %s", b)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
