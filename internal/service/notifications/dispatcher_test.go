package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/internal/integrations/mailer"
	"github.com/m04kA/SMC-ExamBookingService/pkg/logger"
	"github.com/m04kA/SMC-ExamBookingService/pkg/ptr"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []*mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg *mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

// immediate выполняет отложенную задачу сразу, запоминая запрошенную задержку
type immediate struct {
	delays []time.Duration
}

func (s *immediate) schedule(delay time.Duration, fn func()) {
	s.delays = append(s.delays, delay)
	fn()
}

var (
	user = &domain.User{ID: 7, Email: "student@example.org", FirstName: "Anna", LastName: "Virtanen"}
	res  = &domain.Reservation{
		ID:      5,
		StartAt: time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC),
	}
)

func TestDispatcher_NotifyReservation(t *testing.T) {
	m := &recordingMailer{}
	s := &immediate{}
	d := NewDispatcherWithScheduler(m, 5*time.Second, s.schedule, logger.Discard())

	d.NotifyReservation(user, res, &domain.Exam{Name: "Algebra"}, false)
	d.NotifyReservation(user, res, nil, true)
	d.Wait()

	require.Len(t, m.sent, 2)
	assert.Equal(t, mailer.TemplateReservationConfirmed, m.sent[0].Template)
	assert.Equal(t, "student@example.org", m.sent[0].To)
	assert.Equal(t, "Algebra", m.sent[0].Data["exam"])
	assert.Equal(t, "2026-03-02T10:00:00Z", m.sent[0].Data["start"])
	assert.Equal(t, mailer.TemplateReservationChanged, m.sent[1].Template)
	assert.NotContains(t, m.sent[1].Data, "exam")
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, s.delays)
}

func TestDispatcher_NotifyNoShow(t *testing.T) {
	m := &recordingMailer{}
	d := NewDispatcherWithScheduler(m, 0, (&immediate{}).schedule, logger.Discard())

	enrolment := &domain.ExamEnrolment{ID: 9, UserID: ptr.Ptr(int64(7)), ExamID: ptr.Ptr(int64(3)), Reservation: res}
	d.NotifyNoShow(&domain.User{ID: 50, Email: "teacher@example.org"}, enrolment)
	d.Wait()

	require.Len(t, m.sent, 1)
	assert.Equal(t, mailer.TemplateNoShow, m.sent[0].Template)
	assert.Equal(t, "teacher@example.org", m.sent[0].To)
	assert.Equal(t, "9", m.sent[0].Data["enrolmentId"])
	assert.Equal(t, "3", m.sent[0].Data["examId"])
	assert.Equal(t, "7", m.sent[0].Data["studentId"])
}

func TestDispatcher_IgnoresMissingRecipientAndSendErrors(t *testing.T) {
	m := &recordingMailer{err: errors.New("smtp relay down")}
	d := NewDispatcherWithScheduler(m, 0, (&immediate{}).schedule, logger.Discard())

	d.NotifyReservationCancelled(nil, res, nil)
	d.NotifyReservationCancelled(user, res, nil)
	d.Wait()

	require.Len(t, m.sent, 1)
	assert.Equal(t, mailer.TemplateReservationCancelled, m.sent[0].Template)
}

func TestDispatcher_DelayedSend(t *testing.T) {
	m := &recordingMailer{}
	d := NewDispatcher(m, 10*time.Millisecond, logger.Discard())

	d.NotifyReservation(user, res, nil, false)
	d.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Len(t, m.sent, 1)
}
