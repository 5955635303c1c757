package get_free_slots

import (
	"context"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// RoomRepository интерфейс репозитория аудиторий
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ExamRoom, error)
	// GetMachines получает машины аудитории с бронированиями, пересекающими окно
	GetMachines(ctx context.Context, roomID int64, window domain.TimeWindow) ([]*domain.ExamMachine, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
