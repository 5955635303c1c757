package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/machines"
)

// ExamProvider источник экзаменов (локальных и совместных)
type ExamProvider interface {
	Exam(ctx context.Context, ref domain.ExamRef) (*domain.Exam, error)
	State(ctx context.Context, ref domain.ExamRef) (domain.ExamState, error)
}

// RoomRepository интерфейс репозитория аудиторий
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ExamRoom, error)
	GetMachines(ctx context.Context, roomID int64, window domain.TimeWindow) ([]*domain.ExamMachine, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	LockByID(ctx context.Context, id int64) (*domain.User, error)
}

// EnrolmentRepository интерфейс репозитория записей на экзамен
type EnrolmentRepository interface {
	GetByUserAndExam(ctx context.Context, userID int64, ref domain.ExamRef) ([]*domain.ExamEnrolment, error)
	AttachReservation(ctx context.Context, enrolmentID, reservationID int64) error
	DetachReservation(ctx context.Context, enrolmentID int64, canceled bool) error
}

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	Delete(ctx context.Context, id int64) error
	DeleteExternal(ctx context.Context, externalID int64) error
}

// MachineSelector выбор машины
type MachineSelector interface {
	Select(machines []*domain.ExamMachine, c machines.Criteria) (*domain.ExamMachine, bool)
}

// Notifier уведомления пользователю
type Notifier interface {
	NotifyReservation(user *domain.User, res *domain.Reservation, exam *domain.Exam, isChange bool)
}

// ExternalCanceller отмена бронирования у удаленного пира
type ExternalCanceller interface {
	CancelExternalReservation(ctx context.Context, ref string) error
}

// Metrics метрики бронирований
type Metrics interface {
	ObserveReservation(outcome string)
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
