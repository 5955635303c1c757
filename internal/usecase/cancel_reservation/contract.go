package cancel_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	Delete(ctx context.Context, id int64) error
	DeleteExternal(ctx context.Context, externalID int64) error
}

// EnrolmentRepository интерфейс репозитория записей на экзамен
type EnrolmentRepository interface {
	GetByReservationID(ctx context.Context, reservationID int64) (*domain.ExamEnrolment, error)
	DetachReservation(ctx context.Context, enrolmentID int64, canceled bool) error
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	LockByID(ctx context.Context, id int64) (*domain.User, error)
}

// ExamReader чтение локального экзамена для текста уведомления
type ExamReader interface {
	Exam(ctx context.Context, ref domain.ExamRef) (*domain.Exam, error)
}

// ExternalCanceller отмена бронирования у удаленного пира
type ExternalCanceller interface {
	CancelExternalReservation(ctx context.Context, ref string) error
}

// Notifier уведомления пользователю
type Notifier interface {
	NotifyReservationCancelled(user *domain.User, res *domain.Reservation, exam *domain.Exam)
}

// Metrics метрики расхождений с пиром
type Metrics interface {
	ObservePeerDivergence(operation string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
