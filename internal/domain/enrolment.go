package domain

import "time"

// ExamEnrolment запись студента на экзамен. Владеет ссылкой на бронирование.
type ExamEnrolment struct {
	ID                              int64
	UserID                          *int64 // nil для предварительной записи по email
	ExamID                          *int64
	CollaborativeExamID             *int64
	Reservation                     *Reservation
	EnrolledOn                      time.Time
	ReservationCanceled             bool
	PreEnrolledUserEmail            *string
	ExaminationEventConfigurationID *int64
}

// ExamRef возвращает ссылку на экзамен записи
func (e *ExamEnrolment) ExamRef() ExamRef {
	if e.CollaborativeExamID != nil {
		return ExamRef{ID: *e.CollaborativeExamID, Collaborative: true}
	}
	if e.ExamID != nil {
		return ExamRef{ID: *e.ExamID}
	}
	return ExamRef{}
}

// HasReservation true, если к записи привязано бронирование
func (e *ExamEnrolment) HasReservation() bool {
	return e.Reservation != nil
}

// IsActive true, если бронирования нет или оно еще не закончилось
func (e *ExamEnrolment) IsActive(now time.Time) bool {
	return e.Reservation == nil || !e.Reservation.HasEnded(now)
}

// IsReservationInEffect true, если бронирование идет прямо сейчас
func (e *ExamEnrolment) IsReservationInEffect(now time.Time) bool {
	return e.Reservation != nil && e.Reservation.IsInEffect(now)
}

// HasFutureReservation true, если бронирование еще не началось
func (e *ExamEnrolment) HasFutureReservation(now time.Time) bool {
	return e.Reservation != nil && e.Reservation.IsInFuture(now)
}

// ExaminationEventConfiguration альтернативный режим: бронируется фиксированное время события, а не машина
type ExaminationEventConfiguration struct {
	ID        int64
	ExamID    int64
	StartAt   time.Time
	ConfigKey string
}

// NewEnrolment создает запись на экзамен для пользователя
func NewEnrolment(userID int64, ref ExamRef, now time.Time) *ExamEnrolment {
	e := &ExamEnrolment{
		UserID:     &userID,
		EnrolledOn: now,
	}
	setExamRef(e, ref)
	return e
}

// NewPreEnrolment создает предварительную запись по email (аккаунта студента еще нет)
func NewPreEnrolment(email string, ref ExamRef, now time.Time) *ExamEnrolment {
	e := &ExamEnrolment{
		PreEnrolledUserEmail: &email,
		EnrolledOn:           now,
	}
	setExamRef(e, ref)
	return e
}

func setExamRef(e *ExamEnrolment, ref ExamRef) {
	id := ref.ID
	if ref.Collaborative {
		e.CollaborativeExamID = &id
	} else {
		e.ExamID = &id
	}
}
