package scheduler

import (
	"log"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar decides whether a scan date is an exchange session.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// NewTradingCalendar loads the calendar for an ISO 10383 MIC such as "xnys".
// Unknown MICs fall back to xnys, then to a plain Monday to Friday rule.
func NewTradingCalendar(mic string) *TradingCalendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != "xnys" {
		log.Printf("[WARN] no calendar for MIC %q, using xnys", mic)
		cal = calendar.GetCalendar("xnys")
	}
	if cal == nil {
		log.Printf("[WARN] failed to load calendar for %q, using weekday fallback", mic)
		return WeekdayCalendar()
	}
	return &TradingCalendar{Calendar: cal, Timezone: cal.Loc}
}

// WeekdayCalendar treats every Monday to Friday in New York as a session.
func WeekdayCalendar() *TradingCalendar {
	nyLoc, err := time.LoadLocation("America/New_York")
	if err != nil {
		nyLoc = time.UTC
	}
	return &TradingCalendar{Fallback: true, Timezone: nyLoc}
}

// IsTradingDay reports whether date falls on a session in the exchange's timezone.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}
	if tc.Fallback || tc.Calendar == nil {
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}
