package cancel_reservation

import cancelReservation "github.com/m04kA/SMC-ExamBookingService/internal/usecase/cancel_reservation"

// CancelReservationResponse HTTP response model
type CancelReservationResponse struct {
	ReservationID int64  `json:"reservationId"`
	EnrolmentID   *int64 `json:"enrolmentId,omitempty"`
	Status        string `json:"status"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelReservation.Response) *CancelReservationResponse {
	return &CancelReservationResponse{
		ReservationID: resp.ReservationID,
		EnrolmentID:   resp.EnrolmentID,
		Status:        "cancelled",
	}
}
