package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	getFreeSlots "github.com/m04kA/SMC-ExamBookingService/internal/usecase/get_free_slots"
)

// FreeSlotsResponse HTTP response model
type FreeSlotsResponse struct {
	RoomID   int64          `json:"roomId"`
	Date     string         `json:"date"`
	Timezone string         `json:"timezone"`
	Slots    []SlotResponse `json:"slots"`
}

// SlotResponse свободный интервал
type SlotResponse struct {
	Start     string `json:"start"`     // RFC3339
	End       string `json:"end"`       // RFC3339
	StartTime string `json:"startTime"` // "HH:MM" в таймзоне аудитории
	EndTime   string `json:"endTime"`
}

// ToUseCaseRequest формирует запрос к use case с парсингом даты
func ToUseCaseRequest(roomID int64, date string) (*getFreeSlots.Request, error) {
	parsed, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return nil, err
	}
	return &getFreeSlots.Request{
		RoomID: roomID,
		Date:   parsed,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getFreeSlots.Response) *FreeSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			Start:     s.Start.Format(time.RFC3339),
			End:       s.End.Format(time.RFC3339),
			StartTime: s.StartTime.String(),
			EndTime:   s.EndTime.String(),
		})
	}
	return &FreeSlotsResponse{
		RoomID:   resp.RoomID,
		Date:     resp.Date,
		Timezone: resp.Timezone,
		Slots:    slots,
	}
}
