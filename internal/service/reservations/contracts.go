package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
}

// EnrolmentRepository интерфейс репозитория записей на экзамен
type EnrolmentRepository interface {
	GetByUserID(ctx context.Context, userID int64) ([]*domain.ExamEnrolment, error)
}

// RoomRepository интерфейс репозитория аудиторий
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ExamRoom, error)
	GetMachines(ctx context.Context, roomID int64, window domain.TimeWindow) ([]*domain.ExamMachine, error)
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
