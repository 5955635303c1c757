package collaborative

import (
	"context"
	"encoding/json"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/internal/integrations/xm"
)

// Repository локальные прокси-записи совместных экзаменов
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.CollaborativeExam, error)
	UpdateFromPeer(ctx context.Context, exam *domain.CollaborativeExam) error
	CompareAndSwapRevision(ctx context.Context, id int64, oldRevision, newRevision string) (bool, error)
}

// PeerClient клиент удаленного пира
type PeerClient interface {
	GetExam(ctx context.Context, ref string) (*xm.Exam, error)
	UpdateExam(ctx context.Context, ref, rev string, content json.RawMessage) (string, error)
	CancelReservation(ctx context.Context, ref string) error
}

// Metrics счетчик обращений к пиру
type Metrics interface {
	ObservePeerRequest(operation, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
