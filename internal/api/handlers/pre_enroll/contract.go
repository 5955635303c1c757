package pre_enroll

import (
	"context"

	enrollUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/enroll"
)

type PreEnrollUseCase interface {
	PreEnroll(ctx context.Context, req *enrollUC.PreEnrollRequest) (*enrollUC.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
