package models

import (
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// Request модели

// GetUserEnrolmentsRequest запрос на получение записей пользователя
type GetUserEnrolmentsRequest struct {
	UserID     int64 `json:"userId"`
	ActiveOnly bool  `json:"activeOnly,omitempty"` // только записи без бронирования или с незакончившимся
}

// GetRoomReservationsRequest запрос на получение бронирований аудитории за день
type GetRoomReservationsRequest struct {
	RoomID int64     `json:"roomId"`
	Date   time.Time `json:"date"` // календарная дата в таймзоне аудитории
}

// Response модели

// ExternalReservationResponse бронирование на удаленной площадке
type ExternalReservationResponse struct {
	ExternalRef  string `json:"externalRef"`
	OrgRef       string `json:"orgRef"`
	RoomRef      string `json:"roomRef"`
	MachineName  string `json:"machineName"`
	RoomName     string `json:"roomName"`
	RoomTimezone string `json:"roomTimezone"`
}

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID                 int64                        `json:"id"`
	UserID             int64                        `json:"userId"`
	MachineID          *int64                       `json:"machineId,omitempty"`
	MachineName        string                       `json:"machineName,omitempty"`
	Start              string                       `json:"start"` // RFC3339
	End                string                       `json:"end"`   // RFC3339
	NoShow             bool                         `json:"noShow"`
	RetrialPermitted   bool                         `json:"retrialPermitted"`
	OptionalSectionIDs []int64                      `json:"sectionIds"`
	External           *ExternalReservationResponse `json:"external,omitempty"`
	CreatedAt          string                       `json:"createdAt"`
}

// EnrolmentResponse ответ с записью на экзамен
type EnrolmentResponse struct {
	ID                   int64                `json:"id"`
	ExamID               int64                `json:"examId"`
	Collaborative        bool                 `json:"collaborative"`
	EnrolledOn           string               `json:"enrolledOn"`
	ReservationCanceled  bool                 `json:"reservationCanceled"`
	PreEnrolledUserEmail *string              `json:"preEnrolledUserEmail,omitempty"`
	Reservation          *ReservationResponse `json:"reservation,omitempty"`
}

// EnrolmentListResponse ответ со списком записей
type EnrolmentListResponse struct {
	Enrolments []EnrolmentResponse `json:"enrolments"`
}

// RoomReservationsResponse бронирования аудитории за день
type RoomReservationsResponse struct {
	RoomID       int64                 `json:"roomId"`
	Date         string                `json:"date"`
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	sections := r.OptionalSectionIDs
	if sections == nil {
		sections = []int64{}
	}

	resp := &ReservationResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		MachineID:          r.MachineID,
		Start:              r.StartAt.Format(time.RFC3339),
		End:                r.EndAt.Format(time.RFC3339),
		NoShow:             r.NoShow,
		RetrialPermitted:   r.RetrialPermitted,
		OptionalSectionIDs: sections,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
	}

	if r.External != nil {
		resp.External = &ExternalReservationResponse{
			ExternalRef:  r.External.ExternalRef,
			OrgRef:       r.External.OrgRef,
			RoomRef:      r.External.RoomRef,
			MachineName:  r.External.MachineName,
			RoomName:     r.External.RoomName,
			RoomTimezone: r.External.RoomTimezone,
		}
		resp.MachineName = r.External.MachineName
	}

	return resp
}

// FromDomainEnrolment конвертирует запись в DTO
func FromDomainEnrolment(e *domain.ExamEnrolment) EnrolmentResponse {
	ref := e.ExamRef()
	return EnrolmentResponse{
		ID:                   e.ID,
		ExamID:               ref.ID,
		Collaborative:        ref.Collaborative,
		EnrolledOn:           e.EnrolledOn.Format(time.RFC3339),
		ReservationCanceled:  e.ReservationCanceled,
		PreEnrolledUserEmail: e.PreEnrolledUserEmail,
		Reservation:          FromDomainReservation(e.Reservation),
	}
}

// FromDomainEnrolmentList конвертирует список записей в DTO
func FromDomainEnrolmentList(enrolments []*domain.ExamEnrolment) *EnrolmentListResponse {
	resp := &EnrolmentListResponse{
		Enrolments: make([]EnrolmentResponse, 0, len(enrolments)),
	}
	for _, e := range enrolments {
		resp.Enrolments = append(resp.Enrolments, FromDomainEnrolment(e))
	}
	return resp
}
