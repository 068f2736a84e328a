// Package care computes what a household still has to do today: which care
// tasks are pending, which health notices are unrecorded or abnormal, which
// supplies need restocking and which incidents are still open.
//
// Everything in this package is a pure function of its inputs. Callers load a
// Snapshot, pick a wall-clock time and get the same Feed back every time.
package care

import (
	"time"

	dom "nekocare/internal/domain"
)

// Slot band boundaries (hour of day, inclusive start).
const (
	morningStart = 5
	noonStart    = 11
	eveningStart = 15
	nightStart   = 20
)

// CurrentSlot maps a wall-clock hour to its meal slot. Night wraps past
// midnight: [20,24) and [0,5).
func CurrentSlot(hour int) dom.MealSlot {
	switch {
	case hour >= morningStart && hour < noonStart:
		return dom.SlotMorning
	case hour >= noonStart && hour < eveningStart:
		return dom.SlotNoon
	case hour >= eveningStart && hour < nightStart:
		return dom.SlotEvening
	default:
		return dom.SlotNight
	}
}

// slotBands holds the [start, end) hours of each daytime band. Night has no
// entry since it wraps past midnight.
var slotBands = map[dom.MealSlot][2]int{
	dom.SlotMorning: {morningStart, noonStart},
	dom.SlotNoon:    {noonStart, eveningStart},
	dom.SlotEvening: {eveningStart, nightStart},
}

// slotOffset returns the minutes after the business day's reset at which
// slot becomes due. A daytime band already running at the reset is due from
// the reset; a night band running at the reset belongs to the previous day.
func slotOffset(slot dom.MealSlot, dayStartHour int) (int, bool) {
	dsh := clampHour(dayStartHour)
	start := nightStart
	if slot != dom.SlotNight {
		band, ok := slotBands[slot]
		if !ok {
			return 0, false
		}
		if band[0] <= dsh && dsh < band[1] {
			return 0, true
		}
		start = band[0]
	}
	return ((start - dsh + 24) % 24) * 60, true
}

// minutesIntoDay is the wall-clock time elapsed since the business day reset.
func minutesIntoDay(now time.Time, dayStartHour int) int {
	return ((now.Hour()-clampHour(dayStartHour)+24)%24)*60 + now.Minute()
}

// slotsStartedBetween counts the bands that became due in (from, to].
func slotsStartedBetween(from, to, dayStartHour int) int {
	n := 0
	for _, sl := range dom.AllSlots {
		if off, ok := slotOffset(sl, dayStartHour); ok && off > from && off <= to {
			n++
		}
	}
	return n
}

func clampHour(h int) int {
	if h < 0 || h > 23 {
		return dom.DefaultDayStartHour
	}
	return h
}

// BusinessDate returns the calendar day (midnight, in now's location) that now
// belongs to when the day resets at dayStartHour instead of midnight.
func BusinessDate(now time.Time, dayStartHour int) time.Time {
	dayStartHour = clampHour(dayStartHour)
	y, m, d := now.Date()
	if now.Hour() < dayStartHour {
		d--
	}
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DayStart returns the instant the current business day began.
func DayStart(now time.Time, dayStartHour int) time.Time {
	bd := BusinessDate(now, dayStartHour)
	return atHour(bd, clampHour(dayStartHour))
}

func atHour(date time.Time, hour int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, date.Location())
}

// PeriodStart returns the start of the goal period a frequency is counted in:
// the most recent Monday for weekly tasks, the 1st of the month for monthly
// tasks and the current business day otherwise. All periods begin at
// dayStartHour.
func PeriodStart(f dom.Frequency, now time.Time, dayStartHour int) time.Time {
	dayStartHour = clampHour(dayStartHour)
	bd := BusinessDate(now, dayStartHour)
	switch f {
	case dom.FreqWeekly:
		back := (int(bd.Weekday()) + 6) % 7
		return atHour(bd.AddDate(0, 0, -back), dayStartHour)
	case dom.FreqMonthly:
		y, m, _ := bd.Date()
		return time.Date(y, m, 1, dayStartHour, 0, 0, 0, bd.Location())
	default:
		return atHour(bd, dayStartHour)
	}
}

// PeriodEnd returns the exclusive end of the period PeriodStart begins.
func PeriodEnd(f dom.Frequency, now time.Time, dayStartHour int) time.Time {
	start := PeriodStart(f, now, dayStartHour)
	switch f {
	case dom.FreqWeekly:
		return start.AddDate(0, 0, 7)
	case dom.FreqMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// LookbackStart is the earliest instant any period that contains now can
// start at. Loading care logs since this instant is enough to resolve every
// task.
func LookbackStart(now time.Time, dayStartHour int) time.Time {
	week := PeriodStart(dom.FreqWeekly, now, dayStartHour)
	month := PeriodStart(dom.FreqMonthly, now, dayStartHour)
	if week.Before(month) {
		return week
	}
	return month
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween counts calendar days from a to b, ignoring the time of day and
// DST shifts.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
