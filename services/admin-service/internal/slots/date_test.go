package slots

import (
	"testing"
	"time"
)

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-01-02")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2026-01-02" {
		t.Fatalf("round trip gave %q", d.String())
	}
	if d.Weekday() != time.Friday {
		t.Fatalf("expected Friday, got %s", d.Weekday())
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "2026-13-01", "01/02/2026", "2026-1-2-3"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestAddDaysCrossesMonthBoundary(t *testing.T) {
	d := Date{Year: 2026, Month: time.January, Day: 30}
	got := d.AddDays(3)
	want := Date{Year: 2026, Month: time.February, Day: 2}
	if got != want {
		t.Fatalf("AddDays(3) = %s, want %s", got, want)
	}
}

func TestDaysUntil(t *testing.T) {
	d := Date{Year: 2026, Month: time.January, Day: 30}
	if got := d.DaysUntil(Date{Year: 2026, Month: time.February, Day: 2}); got != 3 {
		t.Fatalf("DaysUntil = %d, want 3", got)
	}
	if got := d.DaysUntil(d); got != 0 {
		t.Fatalf("DaysUntil(self) = %d, want 0", got)
	}
	if got := d.DaysUntil(Date{Year: 2026, Month: time.January, Day: 25}); got != -5 {
		t.Fatalf("DaysUntil(earlier) = %d, want -5", got)
	}
}

func TestDateJSON(t *testing.T) {
	d := Date{Year: 2026, Month: time.March, Day: 9}
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != `"2026-03-09"` {
		t.Fatalf("unexpected JSON %s", b)
	}

	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if back != d {
		t.Fatalf("JSON round trip gave %s", back)
	}
}
