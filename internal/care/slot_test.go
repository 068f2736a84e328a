package care

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "nekocare/internal/domain"
)

var jst = time.FixedZone("JST", 9*60*60)

func at(y int, m time.Month, d, h, mi int) time.Time {
	return time.Date(y, m, d, h, mi, 0, 0, jst)
}

func TestCurrentSlot(t *testing.T) {
	tests := []struct {
		hour int
		want dom.MealSlot
	}{
		{0, dom.SlotNight},
		{4, dom.SlotNight},
		{5, dom.SlotMorning},
		{10, dom.SlotMorning},
		{11, dom.SlotNoon},
		{14, dom.SlotNoon},
		{15, dom.SlotEvening},
		{19, dom.SlotEvening},
		{20, dom.SlotNight},
		{23, dom.SlotNight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CurrentSlot(tt.hour), "hour %d", tt.hour)
	}
}

func TestBusinessDate(t *testing.T) {
	assert.Equal(t, at(2024, 6, 1, 0, 0), BusinessDate(at(2024, 6, 2, 2, 0), 4))
	assert.Equal(t, at(2024, 6, 2, 0, 0), BusinessDate(at(2024, 6, 2, 4, 0), 4))
	assert.Equal(t, at(2024, 6, 2, 0, 0), BusinessDate(at(2024, 6, 2, 2, 0), 0))
	// month boundary
	assert.Equal(t, at(2024, 5, 31, 0, 0), BusinessDate(at(2024, 6, 1, 3, 59), 4))
}

func TestBusinessDate_InvalidHourFallsBackToDefault(t *testing.T) {
	assert.Equal(t, at(2024, 6, 1, 0, 0), BusinessDate(at(2024, 6, 2, 3, 0), 42))
}

func TestDayStart(t *testing.T) {
	assert.Equal(t, at(2024, 6, 1, 4, 0), DayStart(at(2024, 6, 2, 2, 0), 4))
	assert.Equal(t, at(2024, 6, 2, 4, 0), DayStart(at(2024, 6, 2, 13, 0), 4))
}

func TestPeriodStart(t *testing.T) {
	wed := at(2024, 6, 5, 9, 0)
	assert.Equal(t, at(2024, 6, 3, 4, 0), PeriodStart(dom.FreqWeekly, wed, 4))
	assert.Equal(t, at(2024, 6, 1, 4, 0), PeriodStart(dom.FreqMonthly, wed, 4))
	assert.Equal(t, at(2024, 6, 5, 4, 0), PeriodStart(dom.FreqAsNeeded, wed, 4))

	// Monday before the day resets still belongs to the previous week.
	monEarly := at(2024, 6, 3, 2, 0)
	assert.Equal(t, at(2024, 5, 27, 4, 0), PeriodStart(dom.FreqWeekly, monEarly, 4))

	// The 1st before reset belongs to the previous month.
	firstEarly := at(2024, 7, 1, 1, 0)
	assert.Equal(t, at(2024, 6, 1, 4, 0), PeriodStart(dom.FreqMonthly, firstEarly, 4))
}

func TestPeriodEnd(t *testing.T) {
	wed := at(2024, 6, 5, 9, 0)
	assert.Equal(t, at(2024, 6, 10, 4, 0), PeriodEnd(dom.FreqWeekly, wed, 4))
	assert.Equal(t, at(2024, 7, 1, 4, 0), PeriodEnd(dom.FreqMonthly, wed, 4))
	assert.Equal(t, at(2024, 6, 6, 4, 0), PeriodEnd(dom.FreqOnceDaily, wed, 4))
}

func TestLookbackStart(t *testing.T) {
	assert.Equal(t, at(2024, 6, 1, 4, 0), LookbackStart(at(2024, 6, 5, 9, 0), 4))
	assert.Equal(t, at(2024, 6, 24, 4, 0), PeriodStart(dom.FreqWeekly, at(2024, 6, 28, 9, 0), 4))
	assert.Equal(t, at(2024, 6, 1, 4, 0), LookbackStart(at(2024, 6, 28, 9, 0), 4))
	assert.Equal(t, at(2024, 7, 29, 4, 0), LookbackStart(at(2024, 8, 2, 9, 0), 4))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 30, DaysBetween(at(2024, 5, 3, 23, 0), at(2024, 6, 2, 1, 0)))
	assert.Equal(t, 0, DaysBetween(at(2024, 6, 2, 0, 0), at(2024, 6, 2, 23, 59)))
}

func TestSlotOffset(t *testing.T) {
	cases := []struct {
		slot dom.MealSlot
		dsh  int
		want int
	}{
		{dom.SlotMorning, 4, 60},
		{dom.SlotNight, 4, 16 * 60},
		{dom.SlotMorning, 6, 0},
		{dom.SlotNoon, 6, 5 * 60},
		{dom.SlotNight, 22, 22 * 60},
		{dom.SlotMorning, 22, 7 * 60},
	}
	for _, tc := range cases {
		got, ok := slotOffset(tc.slot, tc.dsh)
		require.True(t, ok)
		assert.Equal(t, tc.want, got, "%s at reset %d", tc.slot, tc.dsh)
	}
	_, ok := slotOffset("brunch", 4)
	assert.False(t, ok)
}
