package slots

import (
	"reflect"
	"testing"
	"time"
)

// 2026-01-02 is a Friday.
var friday = Date{Year: 2026, Month: time.January, Day: 2}

func fridayTemplate(startMinute, endMinute int) WeekTemplate {
	var tmpl WeekTemplate
	tmpl[time.Friday] = DayWindow{Enabled: true, StartMinute: startMinute, EndMinute: endMinute}
	return tmpl
}

func defaultSettings() Settings {
	return Settings{
		DurationMinutes:      45,
		BufferMinutes:        15,
		AdvanceNoticeHours:   24,
		MaxBookingWindowDays: 30,
	}
}

// now early enough that the 24h advance notice never trims the Friday window.
var longAgo = time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)

func TestGenerate_FridayNineToFour(t *testing.T) {
	// 09:00-16:00, 45min duration + 15min buffer: hourly slots 9:00 .. 15:00.
	days := Generate(friday, 1, fridayTemplate(540, 960), nil, nil, defaultSettings(), longAgo)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].Date != friday {
		t.Fatalf("expected date %s, got %s", friday, days[0].Date)
	}
	if days[0].Label != "Friday, January 2" {
		t.Fatalf("unexpected label %q", days[0].Label)
	}

	want := []string{"9:00 AM", "10:00 AM", "11:00 AM", "12:00 PM", "1:00 PM", "2:00 PM", "3:00 PM"}
	if len(days[0].Slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(days[0].Slots))
	}
	for i, s := range days[0].Slots {
		if s.Display != want[i] {
			t.Fatalf("slot %d: expected %q, got %q", i, want[i], s.Display)
		}
	}
}

func TestGenerate_BookedSlotSuppressed(t *testing.T) {
	booked := []Booked{{Date: friday, StartMinute: 600}} // 10:00
	days := Generate(friday, 1, fridayTemplate(540, 960), nil, booked, defaultSettings(), longAgo)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if len(days[0].Slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(days[0].Slots))
	}
	for _, s := range days[0].Slots {
		if s.Minute == 600 {
			t.Fatal("10:00 slot should have been suppressed")
		}
	}
}

func TestGenerate_DisabledWeekdayYieldsNothing(t *testing.T) {
	tmpl := fridayTemplate(540, 960)
	tmpl[time.Friday].Enabled = false
	days := Generate(friday, 7, tmpl, nil, nil, defaultSettings(), longAgo)
	if len(days) != 0 {
		t.Fatalf("expected no days, got %d", len(days))
	}
}

func TestGenerate_BlackoutDateSkipped(t *testing.T) {
	var tmpl WeekTemplate
	for wd := range tmpl {
		tmpl[wd] = DayWindow{Enabled: true, StartMinute: 540, EndMinute: 960}
	}
	blackouts := map[Date]struct{}{friday: {}}

	days := Generate(friday, 2, tmpl, blackouts, nil, defaultSettings(), longAgo)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].Date != friday.AddDays(1) {
		t.Fatalf("expected result to skip to %s, got %s", friday.AddDays(1), days[0].Date)
	}
}

func TestGenerate_AdvanceNoticeAppliesPerSlot(t *testing.T) {
	// now = Thursday 10:30, advance notice 24h: Friday slots before 10:30 are
	// too soon; 11:00 onward remain.
	now := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	days := Generate(friday, 1, fridayTemplate(540, 960), nil, nil, defaultSettings(), now)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if len(days[0].Slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(days[0].Slots))
	}
	if days[0].Slots[0].Display != "11:00 AM" {
		t.Fatalf("expected first eligible slot 11:00 AM, got %q", days[0].Slots[0].Display)
	}
}

func TestGenerate_AdvanceNoticeExactBoundaryIsEligible(t *testing.T) {
	// cutoff lands exactly on the 10:00 slot: at-or-after the cutoff is bookable.
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	days := Generate(friday, 1, fridayTemplate(540, 960), nil, nil, defaultSettings(), now)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].Slots[0].Display != "10:00 AM" {
		t.Fatalf("expected boundary slot 10:00 AM, got %q", days[0].Slots[0].Display)
	}
}

func TestGenerate_TouchingEndpointsDoNotConflict(t *testing.T) {
	cfg := Settings{DurationMinutes: 60, BufferMinutes: 0, AdvanceNoticeHours: 1, MaxBookingWindowDays: 30}
	// Window 09:00-13:00, hourly candidates 9,10,11,12. Booking at 10:00:
	// the 9:00 slot ends exactly at 10:00 and the 11:00 slot starts exactly
	// at the booking's end, so only 10:00 itself is suppressed.
	booked := []Booked{{Date: friday, StartMinute: 600}}
	days := Generate(friday, 1, fridayTemplate(540, 780), nil, booked, cfg, longAgo)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	var got []int
	for _, s := range days[0].Slots {
		got = append(got, s.Minute)
	}
	want := []int{540, 660, 720}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected slots %v, got %v", want, got)
	}
}

func TestGenerate_SlotsStayInsideWindow(t *testing.T) {
	days := Generate(friday, 1, fridayTemplate(540, 960), nil, nil, defaultSettings(), longAgo)
	cfg := defaultSettings()
	for _, s := range days[0].Slots {
		if s.Minute < 540 {
			t.Fatalf("slot %d starts before the window", s.Minute)
		}
		if s.Minute+cfg.DurationMinutes > 960 {
			t.Fatalf("slot %d overruns the window end", s.Minute)
		}
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	booked := []Booked{{Date: friday, StartMinute: 600}}
	blackouts := map[Date]struct{}{friday.AddDays(7): {}}
	first := Generate(friday, 14, fridayTemplate(540, 960), blackouts, booked, defaultSettings(), longAgo)
	second := Generate(friday, 14, fridayTemplate(540, 960), blackouts, booked, defaultSettings(), longAgo)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("generator output is not stable across identical calls")
	}
}

func TestGenerate_InvertedWindowDegradesToNoSlots(t *testing.T) {
	days := Generate(friday, 1, fridayTemplate(960, 540), nil, nil, defaultSettings(), longAgo)
	if len(days) != 0 {
		t.Fatalf("expected no days for an inverted window, got %d", len(days))
	}
}

func TestGenerate_NonPositiveInputs(t *testing.T) {
	if got := Generate(friday, 0, fridayTemplate(540, 960), nil, nil, defaultSettings(), longAgo); got != nil {
		t.Fatalf("expected nil for numDays=0, got %v", got)
	}
	cfg := defaultSettings()
	cfg.DurationMinutes = 0
	if got := Generate(friday, 1, fridayTemplate(540, 960), nil, nil, cfg, longAgo); got != nil {
		t.Fatalf("expected nil for zero duration, got %v", got)
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := defaultSettings().Validate(); err != nil {
		t.Fatalf("default settings should validate: %v", err)
	}

	bad := defaultSettings()
	bad.DurationMinutes = 10
	if err := bad.Validate(); err == nil {
		t.Fatal("expected duration below 15 to be rejected")
	}

	bad = defaultSettings()
	bad.AdvanceNoticeHours = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected zero advance notice to be rejected")
	}

	bad = defaultSettings()
	bad.MaxBookingWindowDays = 400
	if err := bad.Validate(); err == nil {
		t.Fatal("expected oversized booking window to be rejected")
	}
}
