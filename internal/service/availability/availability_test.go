package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// 2026-03-02 понедельник
func monday(hour int) time.Time {
	return time.Date(2026, time.March, 2, hour, 0, 0, 0, time.UTC)
}

func newRoom() *domain.ExamRoom {
	return &domain.ExamRoom{
		ID:       1,
		Timezone: "UTC",
		WorkingHours: []domain.DefaultWorkingHours{
			{Weekday: time.Monday, Open: "09:00", Close: "17:00"},
		},
		Machines: []*domain.ExamMachine{{ID: 1}, {ID: 2}},
	}
}

func tw(startHour, endHour int) domain.TimeWindow {
	return domain.NewTimeWindow(monday(startHour), monday(endHour))
}

func TestFreeSlots_ReservationSplitsDay(t *testing.T) {
	room := newRoom()
	room.Machines[0].Reservations = []*domain.Reservation{{StartAt: monday(10), EndAt: monday(11)}}

	slots := FreeSlots(room, monday(0))

	require.Len(t, slots, 2)
	assert.Equal(t, tw(9, 10), slots[0])
	assert.Equal(t, tw(11, 17), slots[1])
}

func TestFreeSlots_NoWorkingHours(t *testing.T) {
	room := newRoom()

	assert.Empty(t, FreeSlots(room, monday(0).AddDate(0, 0, 1)), "tuesday has no template")

	room.OutOfService = true
	assert.Empty(t, FreeSlots(room, monday(0)))
}

func TestWorkingWindows_Exceptions(t *testing.T) {
	room := newRoom()
	room.Exceptions = []domain.ExceptionWorkingHours{
		{StartAt: monday(12), EndAt: monday(13), OutOfService: true},
		{StartAt: monday(17), EndAt: monday(19)},
	}

	windows := WorkingWindows(room, monday(0))

	require.Len(t, windows, 2)
	assert.Equal(t, tw(9, 12), windows[0])
	assert.Equal(t, tw(13, 19), windows[1])
}

func TestWorkingWindows_RoomTimezone(t *testing.T) {
	room := newRoom()
	room.Timezone = "Europe/Helsinki"
	loc := room.Location()

	windows := WorkingWindows(room, time.Date(2026, time.March, 2, 0, 0, 0, 0, loc))

	require.Len(t, windows, 1)
	assertInstant(t, time.Date(2026, time.March, 2, 9, 0, 0, 0, loc), windows[0].Start)
	assertInstant(t, time.Date(2026, time.March, 2, 17, 0, 0, 0, loc), windows[0].End)
}

func TestFreeSlots_DaylightSavingChange(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
	}{
		// 29 марта 2026 в Хельсинки сутки длятся 23 часа
		{name: "spring forward", date: time.Date(2026, time.March, 29, 0, 0, 0, 0, time.UTC)},
		// 25 октября 2026 сутки длятся 25 часов
		{name: "fall back", date: time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := newRoom()
			room.Timezone = "Europe/Helsinki"
			room.WorkingHours = []domain.DefaultWorkingHours{
				{Weekday: time.Sunday, Open: "09:00", Close: "17:00"},
			}
			loc := room.Location()
			y, m, d := tt.date.Date()

			slots := FreeSlots(room, time.Date(y, m, d, 12, 0, 0, 0, loc))

			require.Len(t, slots, 1)
			assertInstant(t, time.Date(y, m, d, 9, 0, 0, 0, loc), slots[0].Start)
			assertInstant(t, time.Date(y, m, d, 17, 0, 0, 0, loc), slots[0].End)
			assert.Equal(t, 8*time.Hour, slots[0].Duration())

			assert.True(t, IsOpenDuring(room, domain.NewTimeWindow(
				time.Date(y, m, d, 9, 0, 0, 0, loc), time.Date(y, m, d, 10, 0, 0, 0, loc))))
			assert.False(t, IsOpenDuring(room, domain.NewTimeWindow(
				time.Date(y, m, d, 16, 30, 0, 0, loc), time.Date(y, m, d, 17, 30, 0, 0, loc))))
		})
	}
}

func assertInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

func TestIsOpenDuring(t *testing.T) {
	room := newRoom()

	assert.True(t, IsOpenDuring(room, tw(9, 17)))
	assert.True(t, IsOpenDuring(room, tw(10, 11)))
	assert.False(t, IsOpenDuring(room, tw(8, 10)))
	assert.False(t, IsOpenDuring(room, tw(16, 18)))
	assert.False(t, IsOpenDuring(room, tw(10, 10)), "empty window")

	room.Exceptions = []domain.ExceptionWorkingHours{{StartAt: monday(12), EndAt: monday(13), OutOfService: true}}
	assert.False(t, IsOpenDuring(room, tw(11, 14)))
}

func TestDayBounds(t *testing.T) {
	room := newRoom()
	room.Timezone = "America/New_York"
	loc := room.Location()

	// 03:00 UTC 3 марта это еще 2 марта в Нью-Йорке
	day := DayBounds(room, time.Date(2026, time.March, 3, 3, 0, 0, 0, time.UTC))

	assertInstant(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, loc), day.Start)
	assertInstant(t, time.Date(2026, time.March, 3, 0, 0, 0, 0, loc), day.End)
}
