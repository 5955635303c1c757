package enroll

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// ExamProvider источник экзаменов (локальных и совместных)
type ExamProvider interface {
	Exam(ctx context.Context, ref domain.ExamRef) (*domain.Exam, error)
	State(ctx context.Context, ref domain.ExamRef) (domain.ExamState, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	LockByID(ctx context.Context, id int64) (*domain.User, error)
}

// EnrolmentRepository интерфейс репозитория записей на экзамен
type EnrolmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ExamEnrolment, error)
	GetByUserAndExam(ctx context.Context, userID int64, ref domain.ExamRef) ([]*domain.ExamEnrolment, error)
	GetByEmailAndExam(ctx context.Context, email string, ref domain.ExamRef) ([]*domain.ExamEnrolment, error)
	Create(ctx context.Context, e *domain.ExamEnrolment) (*domain.ExamEnrolment, error)
	Delete(ctx context.Context, id int64) error
}

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Delete(ctx context.Context, id int64) error
	DeleteExternal(ctx context.Context, externalID int64) error
}

// ParticipationRepository попытки сдачи (данные подсистемы оценивания)
type ParticipationRepository interface {
	GetFinishedAttempts(ctx context.Context, userID int64, ref domain.ExamRef, limit int) ([]*domain.Participation, error)
}

// ExternalCanceller отмена бронирования у удаленного пира
type ExternalCanceller interface {
	CancelExternalReservation(ctx context.Context, ref string) error
}

// Metrics метрики записей
type Metrics interface {
	ObserveEnrolment(outcome string)
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
