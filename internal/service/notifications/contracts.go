package notifications

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/integrations/mailer"
)

// Mailer клиент сервиса отправки писем
type Mailer interface {
	Send(ctx context.Context, msg *mailer.Message) error
}

// Scheduler откладывает выполнение fn на delay в отдельной горутине
type Scheduler func(delay time.Duration, fn func())

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// AfterFunc планировщик на time.AfterFunc
func AfterFunc(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}
