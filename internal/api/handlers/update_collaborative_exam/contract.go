package update_collaborative_exam

import (
	"context"
	"encoding/json"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

type CollaborativeService interface {
	UploadExam(ctx context.Context, id int64, content json.RawMessage) (*domain.CollaborativeExam, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
