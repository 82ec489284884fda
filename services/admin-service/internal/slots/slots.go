// Package slots generates bookable appointment slots from a tenant's weekly
// template, blackout dates, booked appointments, and scheduling settings.
// It is pure: no I/O, no clock reads, no mutation of inputs.
package slots

import (
	"fmt"
	"time"
)

// DayWindow is one weekday entry of the weekly template.
type DayWindow struct {
	Enabled     bool
	StartMinute int
	EndMinute   int
}

// WeekTemplate is indexed by time.Weekday (Sunday = 0).
type WeekTemplate [7]DayWindow

// Settings are the per-tenant scheduling knobs.
type Settings struct {
	DurationMinutes      int
	BufferMinutes        int
	AdvanceNoticeHours   int
	MaxBookingWindowDays int
}

// Validate enforces the dashboard's accepted bounds.
func (s Settings) Validate() error {
	if s.DurationMinutes < 15 || s.DurationMinutes > 480 {
		return fmt.Errorf("duration must be between 15 and 480 minutes, got %d", s.DurationMinutes)
	}
	if s.BufferMinutes < 0 || s.BufferMinutes > 240 {
		return fmt.Errorf("buffer must be between 0 and 240 minutes, got %d", s.BufferMinutes)
	}
	if s.AdvanceNoticeHours < 1 || s.AdvanceNoticeHours > 720 {
		return fmt.Errorf("advance notice must be between 1 and 720 hours, got %d", s.AdvanceNoticeHours)
	}
	if s.MaxBookingWindowDays < 1 || s.MaxBookingWindowDays > 365 {
		return fmt.Errorf("booking window must be between 1 and 365 days, got %d", s.MaxBookingWindowDays)
	}
	return nil
}

// Booked is an existing non-cancelled appointment. Cancelled appointments
// must be filtered out by the caller before slot generation.
type Booked struct {
	Date        Date
	StartMinute int
}

// Slot is one bookable start time.
type Slot struct {
	Minute  int    `json:"-"`
	Time    string `json:"time"`    // 24-hour "HH:MM"
	Display string `json:"display"` // "h:MM AM/PM"
}

// DaySlots is a day with at least one bookable slot. Days with no slots are
// omitted from generator output entirely.
type DaySlots struct {
	Date  Date   `json:"date"`
	Label string `json:"label"`
	Slots []Slot `json:"slots"`
}

// Generate scans numDays consecutive calendar days starting at start and
// returns the chronological list of days that have at least one bookable
// slot. A day contributes nothing when its weekday is disabled, its date is
// blacked out, or every candidate is too soon or conflicts with a booking.
//
// The advance-notice cutoff applies per slot, not per day: on a partially
// elapsed day, slots at or after now+advanceNotice are still offered. A
// template entry whose window is inverted (end <= start) yields no slots for
// that weekday rather than an error.
func Generate(start Date, numDays int, tmpl WeekTemplate, blackouts map[Date]struct{}, booked []Booked, cfg Settings, now time.Time) []DaySlots {
	if numDays <= 0 || cfg.DurationMinutes <= 0 {
		return nil
	}

	cutoff := now.Add(time.Duration(cfg.AdvanceNoticeHours) * time.Hour)

	bookedByDate := make(map[Date][]int, len(booked))
	for _, b := range booked {
		bookedByDate[b.Date] = append(bookedByDate[b.Date], b.StartMinute)
	}

	var out []DaySlots
	for i := 0; i < numDays; i++ {
		d := start.AddDays(i)
		win := tmpl[d.Weekday()]
		if !win.Enabled || win.EndMinute <= win.StartMinute {
			continue
		}
		if _, blocked := blackouts[d]; blocked {
			continue
		}
		daySlots := dayCandidates(d, win, bookedByDate[d], cfg, cutoff, now.Location())
		if len(daySlots) > 0 {
			out = append(out, DaySlots{Date: d, Label: d.Label(), Slots: daySlots})
		}
	}
	return out
}

func dayCandidates(d Date, win DayWindow, bookedStarts []int, cfg Settings, cutoff time.Time, loc *time.Location) []Slot {
	step := cfg.DurationMinutes + cfg.BufferMinutes
	var out []Slot
	for cur := win.StartMinute; cur+cfg.DurationMinutes <= win.EndMinute && cur < minutesPerDay; cur += step {
		if d.At(cur, loc).Before(cutoff) {
			continue
		}
		if overlapsAny(cur, cfg.DurationMinutes, bookedStarts) {
			continue
		}
		out = append(out, Slot{Minute: cur, Time: FormatClock(cur), Display: Format12Hour(cur)})
	}
	return out
}

// overlapsAny applies the half-open interval test: [start, start+duration)
// against [b, b+duration). Touching endpoints do not conflict.
func overlapsAny(start, duration int, bookedStarts []int) bool {
	for _, b := range bookedStarts {
		if start < b+duration && start+duration > b {
			return true
		}
	}
	return false
}
