package get_collaborative_exam

import (
	"context"

	"github.com/m04kA/SMC-ExamBookingService/internal/service/collaborative"
)

type CollaborativeService interface {
	DownloadExam(ctx context.Context, id int64) (*collaborative.DownloadedExam, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
