package remove_enrolment

import (
	"context"

	enrollUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/enroll"
)

type RemoveEnrolmentUseCase interface {
	RemoveEnrolment(ctx context.Context, req *enrollUC.RemoveRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
