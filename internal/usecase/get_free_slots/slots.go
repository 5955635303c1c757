package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/pkg/types"
)

// toSlots переводит интервалы в модели ответа с локальным временем аудитории
func toSlots(windows []domain.TimeWindow, day domain.TimeWindow) []Slot {
	slots := make([]Slot, 0, len(windows))
	for _, w := range windows {
		slots = append(slots, Slot{
			Start:     w.Start,
			End:       w.End,
			StartTime: localTime(w.Start, day),
			EndTime:   localTime(w.End, day),
		})
	}
	return slots
}

// localTime время суток в таймзоне дня. Конец суток отдается как "24:00".
func localTime(t time.Time, day domain.TimeWindow) types.TimeString {
	if !t.Before(day.End) {
		return types.TimeString("24:00")
	}
	return types.NewTimeString(t.In(day.Start.Location()))
}
