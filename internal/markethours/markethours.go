// Package markethours models the HOSE trading day: morning and afternoon
// continuous sessions split by a lunch break, plus the closing auction.
// All checks run in Vietnam local time (UTC+7).
package markethours

import "time"

// ICT is the Vietnam (Indochina) time zone, UTC+7.
var ICT = time.FixedZone("ICT", 7*3600)

// Session boundaries in minutes-from-midnight, ICT.
const (
	MorningOpen   = 9 * 60          // 09:00
	MorningClose  = 11*60 + 30      // 11:30
	AfternoonOpen = 13 * 60         // 13:00
	ATCStart      = 14*60 + 30      // 14:30 closing auction
	MarketClose   = 15 * 60         // 15:00
	PostClose     = 15*60 + 15      // 15:15 last off-session prints
	PrimeOpenEnd  = 10*60 + 30      // 09:00–10:30 high-conviction window
	PrimeATCStart = 14 * 60         // 14:00–14:30 pre-ATC window
)

// Session names a slice of the trading day.
type Session string

const (
	SessionMorning   Session = "MORNING"
	SessionLunch     Session = "LUNCH"
	SessionAfternoon Session = "AFTERNOON"
	SessionATC       Session = "ATC"
	SessionClosed    Session = "CLOSED"
	SessionWeekend   Session = "WEEKEND"
)

func hm(t time.Time) int {
	local := t.In(ICT)
	return local.Hour()*60 + local.Minute()
}

// IsWeekday returns true for Mon-Fri in ICT.
func IsWeekday(t time.Time) bool {
	wd := t.In(ICT).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingHours reports whether t falls in a continuous trading session
// (morning or afternoon, lunch excluded) on a weekday.
func IsTradingHours(t time.Time) bool {
	if !IsWeekday(t) {
		return false
	}
	m := hm(t)
	return (m >= MorningOpen && m < MorningClose) ||
		(m >= AfternoonOpen && m < MarketClose)
}

// IsLunchBreak reports whether t falls in the 11:30-13:00 lunch break.
// Signals fired in this window are low-conviction and suppressed upstream.
func IsLunchBreak(t time.Time) bool {
	if !IsWeekday(t) {
		return false
	}
	m := hm(t)
	return m >= MorningClose && m < AfternoonOpen
}

// CurrentSession classifies t into a trading-day session.
func CurrentSession(t time.Time) Session {
	if !IsWeekday(t) {
		return SessionWeekend
	}
	m := hm(t)
	switch {
	case m >= MorningOpen && m < MorningClose:
		return SessionMorning
	case m >= MorningClose && m < AfternoonOpen:
		return SessionLunch
	case m >= ATCStart && m < MarketClose:
		return SessionATC
	case m >= AfternoonOpen && m < MarketClose:
		return SessionAfternoon
	default:
		return SessionClosed
	}
}

// Badge tiers time-of-day signal quality for alert payloads. The windows
// around the open and the closing auction carry the most institutional
// follow-through; lunch prints are explicitly demoted.
type Badge string

const (
	BadgePrimeOpen Badge = "PRIME_OPEN"
	BadgePrimeATC  Badge = "PRIME_ATC"
	BadgeLunch     Badge = "LUNCH_LOW_TRUST"
	BadgeRegular   Badge = "REGULAR"
)

// SessionBadge returns the signal-quality tier for t.
func SessionBadge(t time.Time) Badge {
	m := hm(t)
	switch {
	case m >= MorningOpen+15 && m <= PrimeOpenEnd:
		return BadgePrimeOpen
	case m >= PrimeATCStart && m <= ATCStart:
		return BadgePrimeATC
	case m >= MorningClose && m < AfternoonOpen:
		return BadgeLunch
	default:
		return BadgeRegular
	}
}

// DailyResetTime returns the stats/watchlist daily boundary (08:30 ICT)
// for the trading day containing t.
func DailyResetTime(t time.Time) time.Time {
	local := t.In(ICT)
	return time.Date(local.Year(), local.Month(), local.Day(), 8, 30, 0, 0, ICT)
}
