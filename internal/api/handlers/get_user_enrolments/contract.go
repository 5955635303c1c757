package get_user_enrolments

import (
	"context"

	"github.com/m04kA/SMC-ExamBookingService/internal/service/reservations/models"
)

type ReservationService interface {
	GetUserEnrolments(ctx context.Context, req *models.GetUserEnrolmentsRequest) (*models.EnrolmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
