package handlers

import (
	"testing"
	"time"

	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/slots"
)

func TestWeekFromPayload_ParsesClockStrings(t *testing.T) {
	tmpl, msg := weekFromPayload(weekPayload{
		"monday": {Enabled: true, Start: "09:00", End: "17:00"},
		"friday": {Enabled: true, Start: "10:30", End: "16:00"},
	})
	if msg != "" {
		t.Fatalf("unexpected validation error %q", msg)
	}
	mon := tmpl[1]
	if !mon.Enabled || mon.StartMinute != 540 || mon.EndMinute != 1020 {
		t.Fatalf("monday parsed wrong: %+v", mon)
	}
	fri := tmpl[5]
	if !fri.Enabled || fri.StartMinute != 630 || fri.EndMinute != 960 {
		t.Fatalf("friday parsed wrong: %+v", fri)
	}
	if tmpl[0].Enabled || tmpl[6].Enabled {
		t.Fatal("omitted weekdays must stay disabled")
	}
}

func TestWeekFromPayload_RejectsInvertedEnabledWindow(t *testing.T) {
	_, msg := weekFromPayload(weekPayload{
		"tuesday": {Enabled: true, Start: "17:00", End: "09:00"},
	})
	if msg == "" {
		t.Fatal("expected validation error for inverted window")
	}
}

func TestWeekFromPayload_RejectsUnknownWeekday(t *testing.T) {
	_, msg := weekFromPayload(weekPayload{
		"funday": {Enabled: true, Start: "09:00", End: "17:00"},
	})
	if msg == "" {
		t.Fatal("expected validation error for unknown weekday")
	}
}

func TestWeekFromPayload_RejectsBadClock(t *testing.T) {
	for _, bad := range []string{"9:00:00", "25:00", "09-00", ""} {
		_, msg := weekFromPayload(weekPayload{
			"monday": {Enabled: true, Start: bad, End: "17:00"},
		})
		if msg == "" {
			t.Errorf("expected validation error for start %q", bad)
		}
	}
}

func TestBookingWindow_DefaultsToMax(t *testing.T) {
	today := slots.Date{Year: 2026, Month: time.March, Day: 1}
	if got := bookingWindow(today, today, 0, 30); got != 30 {
		t.Fatalf("bookingWindow = %d, want 30", got)
	}
	if got := bookingWindow(today, today, 45, 30); got != 30 {
		t.Fatalf("oversized request gave %d, want 30", got)
	}
	if got := bookingWindow(today, today, 7, 30); got != 7 {
		t.Fatalf("smaller request gave %d, want 7", got)
	}
}

func TestBookingWindow_ClampsLateStartToHorizon(t *testing.T) {
	today := slots.Date{Year: 2026, Month: time.March, Day: 1}
	start := today.AddDays(25)
	if got := bookingWindow(start, today, 0, 30); got != 5 {
		t.Fatalf("bookingWindow = %d, want the 5 days left before the horizon", got)
	}
	if got := bookingWindow(start, today, 10, 30); got != 5 {
		t.Fatalf("requested 10 gave %d, want 5", got)
	}
}

func TestBookingWindow_StartBeyondHorizonScansNothing(t *testing.T) {
	today := slots.Date{Year: 2026, Month: time.March, Day: 1}
	if got := bookingWindow(today.AddDays(30), today, 0, 30); got != 0 {
		t.Fatalf("start on the horizon gave %d, want 0", got)
	}
	if got := bookingWindow(today.AddDays(90), today, 14, 30); got != 0 {
		t.Fatalf("far-future start gave %d, want 0", got)
	}
}

func TestWeekToPayload_RoundTrip(t *testing.T) {
	var tmpl slots.WeekTemplate
	tmpl[3] = slots.DayWindow{Enabled: true, StartMinute: 480, EndMinute: 720}

	p := weekToPayload(tmpl)
	if len(p) != 7 {
		t.Fatalf("expected 7 weekdays, got %d", len(p))
	}
	wed := p["wednesday"]
	if !wed.Enabled || wed.Start != "08:00" || wed.End != "12:00" {
		t.Fatalf("wednesday serialized wrong: %+v", wed)
	}

	back, msg := weekFromPayload(p)
	if msg != "" {
		t.Fatalf("round trip failed: %q", msg)
	}
	if back != tmpl {
		t.Fatalf("round trip mismatch: %+v != %+v", back, tmpl)
	}
}
