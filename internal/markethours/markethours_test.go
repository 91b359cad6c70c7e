package markethours

import (
	"testing"
	"time"
)

// ict builds a weekday timestamp (Monday 2025-03-03) at the given clock time.
func ict(hour, min int) time.Time {
	return time.Date(2025, 3, 3, hour, min, 0, 0, ICT)
}

func TestIsWeekday(t *testing.T) {
	if !IsWeekday(ict(10, 0)) {
		t.Fatalf("Monday should be a weekday")
	}
	sat := time.Date(2025, 3, 1, 10, 0, 0, 0, ICT)
	if IsWeekday(sat) {
		t.Fatalf("Saturday should not be a weekday")
	}
	// The day flips with the zone: Friday 23:00 UTC is Saturday 06:00 ICT.
	friUTC := time.Date(2025, 3, 7, 23, 0, 0, 0, time.UTC)
	if IsWeekday(friUTC) {
		t.Fatalf("weekday check must run in ICT, not UTC")
	}
}

func TestCurrentSession(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want Session
	}{
		{"pre-open", ict(8, 45), SessionClosed},
		{"morning open", ict(9, 0), SessionMorning},
		{"late morning", ict(11, 29), SessionMorning},
		{"lunch start", ict(11, 30), SessionLunch},
		{"lunch end", ict(12, 59), SessionLunch},
		{"afternoon open", ict(13, 0), SessionAfternoon},
		{"pre-ATC", ict(14, 29), SessionAfternoon},
		{"closing auction", ict(14, 30), SessionATC},
		{"post close", ict(15, 0), SessionClosed},
		{"weekend", time.Date(2025, 3, 2, 10, 0, 0, 0, ICT), SessionWeekend},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CurrentSession(tc.t); got != tc.want {
				t.Fatalf("CurrentSession = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsTradingHours(t *testing.T) {
	cases := []struct {
		t    time.Time
		want bool
	}{
		{ict(9, 0), true},
		{ict(11, 30), false}, // lunch
		{ict(13, 0), true},
		{ict(14, 59), true},
		{ict(15, 0), false},
		{time.Date(2025, 3, 1, 10, 0, 0, 0, ICT), false}, // Saturday
	}
	for _, tc := range cases {
		if got := IsTradingHours(tc.t); got != tc.want {
			t.Fatalf("IsTradingHours(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestIsLunchBreak(t *testing.T) {
	if !IsLunchBreak(ict(12, 0)) {
		t.Fatalf("noon should be lunch break")
	}
	if IsLunchBreak(ict(13, 0)) {
		t.Fatalf("13:00 reopens the market")
	}
	if IsLunchBreak(time.Date(2025, 3, 2, 12, 0, 0, 0, ICT)) {
		t.Fatalf("weekend noon is not a lunch break")
	}
}

func TestSessionBadge(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want Badge
	}{
		{"very first prints", ict(9, 5), BadgeRegular},
		{"prime open", ict(9, 30), BadgePrimeOpen},
		{"prime open end", ict(10, 30), BadgePrimeOpen},
		{"mid morning", ict(11, 0), BadgeRegular},
		{"lunch", ict(12, 15), BadgeLunch},
		{"pre-ATC", ict(14, 10), BadgePrimeATC},
		{"afternoon", ict(13, 30), BadgeRegular},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SessionBadge(tc.t); got != tc.want {
				t.Fatalf("SessionBadge = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDailyResetTime(t *testing.T) {
	got := DailyResetTime(ict(14, 45))
	want := ict(8, 30)
	if !got.Equal(want) {
		t.Fatalf("DailyResetTime = %v, want %v", got, want)
	}
	// Same boundary regardless of the caller's zone.
	utc := time.Date(2025, 3, 3, 4, 0, 0, 0, time.UTC) // 11:00 ICT
	if !DailyResetTime(utc).Equal(want) {
		t.Fatalf("DailyResetTime must resolve the ICT trading day")
	}
}
