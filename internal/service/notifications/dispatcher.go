package notifications

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/internal/integrations/mailer"
)

const sendTimeout = 30 * time.Second

// Dispatcher рассылает уведомления асинхронно, после фиксации транзакции.
// Ошибки отправки только логируются и не влияют на вызывающую операцию.
type Dispatcher struct {
	mailer   Mailer
	delay    time.Duration
	schedule Scheduler
	logger   Logger
	wg       sync.WaitGroup
}

// NewDispatcher создает диспетчер уведомлений с отправкой через delay
func NewDispatcher(m Mailer, delay time.Duration, logger Logger) *Dispatcher {
	return NewDispatcherWithScheduler(m, delay, AfterFunc, logger)
}

// NewDispatcherWithScheduler создает диспетчер с заданным планировщиком
func NewDispatcherWithScheduler(m Mailer, delay time.Duration, schedule Scheduler, logger Logger) *Dispatcher {
	return &Dispatcher{
		mailer:   m,
		delay:    delay,
		schedule: schedule,
		logger:   logger,
	}
}

// NotifyReservation уведомляет пользователя о новом или измененном бронировании
func (d *Dispatcher) NotifyReservation(user *domain.User, res *domain.Reservation, exam *domain.Exam, isChange bool) {
	if user == nil || res == nil {
		return
	}
	template := mailer.TemplateReservationConfirmed
	subject := "Бронирование подтверждено"
	if isChange {
		template = mailer.TemplateReservationChanged
		subject = "Бронирование изменено"
	}
	d.enqueue(&mailer.Message{
		To:       user.Email,
		Template: template,
		Subject:  subject,
		Data:     reservationData(user, res, exam),
	})
}

// NotifyReservationCancelled уведомляет пользователя об отмене бронирования
func (d *Dispatcher) NotifyReservationCancelled(user *domain.User, res *domain.Reservation, exam *domain.Exam) {
	if user == nil || res == nil {
		return
	}
	d.enqueue(&mailer.Message{
		To:       user.Email,
		Template: mailer.TemplateReservationCancelled,
		Subject:  "Бронирование отменено",
		Data:     reservationData(user, res, exam),
	})
}

// NotifyNoShow уведомляет владельца или инспектора экзамена о неявке студента
func (d *Dispatcher) NotifyNoShow(recipient *domain.User, enrolment *domain.ExamEnrolment) {
	if recipient == nil || enrolment == nil {
		return
	}
	data := map[string]string{
		"recipient":   recipient.FirstName + " " + recipient.LastName,
		"enrolmentId": strconv.FormatInt(enrolment.ID, 10),
		"examId":      strconv.FormatInt(enrolment.ExamRef().ID, 10),
	}
	if enrolment.UserID != nil {
		data["studentId"] = strconv.FormatInt(*enrolment.UserID, 10)
	}
	if enrolment.Reservation != nil {
		data["start"] = enrolment.Reservation.StartAt.Format(time.RFC3339)
		data["end"] = enrolment.Reservation.EndAt.Format(time.RFC3339)
	}
	d.enqueue(&mailer.Message{
		To:       recipient.Email,
		Template: mailer.TemplateNoShow,
		Subject:  "Студент не явился на экзамен",
		Data:     data,
	})
}

// Wait дожидается завершения уже запущенных отправок (при остановке сервиса)
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) enqueue(msg *mailer.Message) {
	d.wg.Add(1)
	d.schedule(d.delay, func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("Notify: panic while sending template=%s to=%s: %v", msg.Template, msg.To, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := d.mailer.Send(ctx, msg); err != nil {
			d.logger.Error("Notify: failed to send template=%s to=%s: %v", msg.Template, msg.To, err)
			return
		}
	})
}

func reservationData(user *domain.User, res *domain.Reservation, exam *domain.Exam) map[string]string {
	data := map[string]string{
		"student":       user.FirstName + " " + user.LastName,
		"reservationId": strconv.FormatInt(res.ID, 10),
		"start":         res.StartAt.Format(time.RFC3339),
		"end":           res.EndAt.Format(time.RFC3339),
	}
	if exam != nil {
		data["exam"] = exam.Name
	}
	if res.External != nil {
		data["room"] = res.External.RoomName
		data["machine"] = res.External.MachineName
	}
	return data
}
