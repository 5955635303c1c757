package noshow

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// EnrolmentRepository поиск кандидатов на неявку
type EnrolmentRepository interface {
	FindNoShowCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.ExamEnrolment, error)
}

// ReservationRepository отметка неявки
type ReservationRepository interface {
	MarkNoShow(ctx context.Context, id int64) (bool, error)
}

// ExamRepository локальные экзамены
type ExamRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Exam, error)
}

// UserRepository получатели уведомлений
type UserRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.User, error)
}

// Notifier уведомления о неявке
type Notifier interface {
	NotifyNoShow(recipient *domain.User, enrolment *domain.ExamEnrolment)
}

// Metrics метрики неявок
type Metrics interface {
	ObserveNoShow(examKind string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
