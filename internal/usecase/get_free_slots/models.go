package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-ExamBookingService/pkg/types"
)

// Request модель запроса свободных интервалов аудитории
type Request struct {
	RoomID int64     // ID аудитории
	Date   time.Time // Календарная дата, время суток и таймзона игнорируются
}

// Response модель ответа со свободными интервалами
type Response struct {
	RoomID   int64
	Date     string // YYYY-MM-DD в таймзоне аудитории
	Timezone string
	Slots    []Slot
}

// Slot свободный интервал [Start, End)
type Slot struct {
	Start     time.Time
	End       time.Time
	StartTime types.TimeString // локальное время начала, "HH:MM"
	EndTime   types.TimeString // локальное время конца, "24:00" для полуночи следующего дня
}
