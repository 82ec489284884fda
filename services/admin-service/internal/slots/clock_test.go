package slots

import "testing"

func TestFormat12Hour_Mapping(t *testing.T) {
	cases := []struct {
		minute int
		want   string
	}{
		{0, "12:00 AM"},
		{1, "12:01 AM"},
		{540, "9:00 AM"},
		{545, "9:05 AM"},
		{719, "11:59 AM"},
		{720, "12:00 PM"},
		{780, "1:00 PM"},
		{1380, "11:00 PM"},
		{1439, "11:59 PM"},
	}
	for _, c := range cases {
		if got := Format12Hour(c.minute); got != c.want {
			t.Fatalf("Format12Hour(%d) = %q, want %q", c.minute, got, c.want)
		}
	}
}

func TestTwelveHourRoundTrip(t *testing.T) {
	for minute := 0; minute < minutesPerDay; minute++ {
		parsed, err := Parse12Hour(Format12Hour(minute))
		if err != nil {
			t.Fatalf("minute %d: %v", minute, err)
		}
		if parsed != minute {
			t.Fatalf("round trip lost minute %d (got %d)", minute, parsed)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"9:00", 540},
		{"16:00", 960},
		{"23:59", 1439},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseClock(%q) = %d, want %d", c.in, got, c.want)
		}
	}

	for _, bad := range []string{"", "24:00", "12:60", "noon", "12", "12:0x"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q) should fail", bad)
		}
	}
}

func TestClockRoundTrip(t *testing.T) {
	for minute := 0; minute < minutesPerDay; minute++ {
		parsed, err := ParseClock(FormatClock(minute))
		if err != nil {
			t.Fatalf("minute %d: %v", minute, err)
		}
		if parsed != minute {
			t.Fatalf("round trip lost minute %d (got %d)", minute, parsed)
		}
	}
}
