package create_reservation

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// validateRequest дешевая проверка запроса до любых блокировок
func validateRequest(req *Request, now time.Time) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.RoomID <= 0 {
		return fmt.Errorf("%w: roomID must be positive", ErrInvalidInput)
	}

	if req.ExamID <= 0 {
		return fmt.Errorf("%w: examID must be positive", ErrInvalidInput)
	}

	if req.Start.IsZero() || req.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}

	if !req.End.After(req.Start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidTimeRange)
	}

	duration := req.End.Sub(req.Start)
	if duration < domain.MinReservationMinutes*time.Minute || duration > domain.MaxReservationMinutes*time.Minute {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidTimeRange, domain.MinReservationMinutes, domain.MaxReservationMinutes)
	}

	if req.Start.Before(now) {
		return ErrStartInPast
	}

	if len(req.AccessibilityIDs) > domain.MaxAccessibilityRequirements {
		return fmt.Errorf("%w: too many accessibility requirements", ErrInvalidInput)
	}

	for _, id := range req.AccessibilityIDs {
		if id <= 0 {
			return fmt.Errorf("%w: accessibility ids must be positive", ErrInvalidInput)
		}
	}

	for _, id := range req.SectionIDs {
		if id <= 0 {
			return fmt.Errorf("%w: section ids must be positive", ErrInvalidInput)
		}
	}

	return nil
}

// findReplaceableEnrolment ищет запись, к которой можно привязать новое бронирование.
// Запись с идущим бронированием блокирует операцию. Запись с будущим бронированием
// имеет приоритет над записью без бронирования: ее бронирование будет заменено.
func findReplaceableEnrolment(enrolments []*domain.ExamEnrolment, now time.Time) (*domain.ExamEnrolment, error) {
	var unreserved, future *domain.ExamEnrolment

	for _, e := range enrolments {
		switch {
		case e.IsReservationInEffect(now):
			return nil, ErrReservationInEffect
		case e.HasFutureReservation(now):
			if future == nil {
				future = e
			}
		case !e.HasReservation():
			if unreserved == nil {
				unreserved = e
			}
		}
	}

	if future != nil {
		return future, nil
	}
	if unreserved != nil {
		return unreserved, nil
	}
	return nil, ErrEnrolmentNotFound
}

// withoutReservation убирает бронирование из списков машин: заменяемое бронирование
// удаляется в той же транзакции и не должно мешать выбору
func withoutReservation(machines []*domain.ExamMachine, reservationID int64) {
	for _, m := range machines {
		kept := m.Reservations[:0]
		for _, r := range m.Reservations {
			if r.ID != reservationID {
				kept = append(kept, r)
			}
		}
		m.Reservations = kept
	}
}
