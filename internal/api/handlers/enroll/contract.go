package enroll

import (
	"context"

	enrollUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/enroll"
)

type EnrollUseCase interface {
	Enroll(ctx context.Context, req *enrollUC.EnrollRequest) (*enrollUC.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
