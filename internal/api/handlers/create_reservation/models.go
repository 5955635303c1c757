package create_reservation

import (
	"time"

	createReservation "github.com/m04kA/SMC-ExamBookingService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	RoomID           int64     `json:"roomId" validate:"required,gt=0"`
	ExamID           int64     `json:"examId" validate:"required,gt=0"`
	Collaborative    bool      `json:"collaborative"`
	Start            time.Time `json:"start" validate:"required"` // RFC3339
	End              time.Time `json:"end" validate:"required"`
	AccessibilityIDs []int64   `json:"accessibilityIds,omitempty" validate:"max=32,dive,gt=0"`
	SectionIDs       []int64   `json:"sectionIds,omitempty" validate:"dive,gt=0"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID                    int64   `json:"id"`
	EnrolmentID           int64   `json:"enrolmentId"`
	UserID                int64   `json:"userId"`
	ExamID                int64   `json:"examId"`
	Collaborative         bool    `json:"collaborative"`
	RoomID                int64   `json:"roomId"`
	MachineID             int64   `json:"machineId"`
	MachineName           string  `json:"machineName"`
	Start                 string  `json:"start"`
	End                   string  `json:"end"`
	OptionalSectionIDs    []int64 `json:"sectionIds"`
	ReplacedReservationID *int64  `json:"replacedReservationId,omitempty"`
	CreatedAt             string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64) *createReservation.Request {
	return &createReservation.Request{
		UserID:           userID,
		RoomID:           r.RoomID,
		ExamID:           r.ExamID,
		Collaborative:    r.Collaborative,
		Start:            r.Start,
		End:              r.End,
		AccessibilityIDs: r.AccessibilityIDs,
		SectionIDs:       r.SectionIDs,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	sections := resp.OptionalSectionIDs
	if sections == nil {
		sections = []int64{}
	}
	return &ReservationResponse{
		ID:                    resp.ID,
		EnrolmentID:           resp.EnrolmentID,
		UserID:                resp.UserID,
		ExamID:                resp.ExamID,
		Collaborative:         resp.Collaborative,
		RoomID:                resp.RoomID,
		MachineID:             resp.MachineID,
		MachineName:           resp.MachineName,
		Start:                 resp.Start.Format(time.RFC3339),
		End:                   resp.End.Format(time.RFC3339),
		OptionalSectionIDs:    sections,
		ReplacedReservationID: resp.ReplacedReservationID,
		CreatedAt:             resp.CreatedAt.Format(time.RFC3339),
	}
}
