package enroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// checkEnrollable проверяет, что студент может сам записаться на экзамен
func checkEnrollable(exam *domain.Exam, principal domain.Principal, now time.Time) error {
	if !exam.IsPublished() {
		return fmt.Errorf("%w: exam is in state %s", ErrExamNotEnrollable, exam.State)
	}
	if exam.ExecutionType != domain.ExecutionPublic {
		return fmt.Errorf("%w: execution type %s requires pre-enrolment", ErrExamNotEnrollable, exam.ExecutionType)
	}
	if exam.HasEnded(now) {
		return fmt.Errorf("%w: exam active period has ended", ErrExamNotEnrollable)
	}
	if exam.Collaborative && !exam.AllowsOrganisation(principal.Organisation) {
		return ErrOrganisationNotAllowed
	}
	return nil
}

// checkPreEnrollable проверяет экзамен для предварительной записи преподавателем.
// Период активности и лимит попыток не проверяются.
func checkPreEnrollable(exam *domain.Exam, principal domain.Principal) error {
	if !principal.IsTeacher() {
		return ErrAccessDenied
	}
	if !principal.IsAdmin() && !exam.Collaborative && !containsID(exam.OwnerIDs, principal.UserID) {
		return fmt.Errorf("%w: only exam owners can pre-enrol students", ErrAccessDenied)
	}
	if exam.ExecutionType == domain.ExecutionPublic {
		return fmt.Errorf("%w: public exams use self-enrolment", ErrExamNotEnrollable)
	}
	switch exam.State {
	case domain.ExamStateDraft, domain.ExamStateSaved, domain.ExamStatePublished:
		return nil
	default:
		return fmt.Errorf("%w: exam is in state %s", ErrExamNotEnrollable, exam.State)
	}
}

// countCountedAttempts считает попытки, которые идут в лимит (без разрешенных пересдач)
func countCountedAttempts(attempts []*domain.Participation) int {
	count := 0
	for _, a := range attempts {
		if a.RetrialPermitted {
			continue
		}
		if !domain.IsFinishedAttemptState(a.State) {
			continue
		}
		count++
	}
	return count
}

// splitExisting разбирает существующие записи пользователя на экзамен.
// Идущее бронирование - отказ (проверяется первым, независимо от порядка строк),
// запись без бронирования - дубль, записи с будущими бронированиями заменяются,
// прошедшие остаются историей.
func splitExisting(enrolments []*domain.ExamEnrolment, now time.Time) ([]*domain.ExamEnrolment, error) {
	for _, e := range enrolments {
		if e.IsReservationInEffect(now) {
			return nil, ErrReservationInEffect
		}
	}

	superseded := make([]*domain.ExamEnrolment, 0)
	for _, e := range enrolments {
		switch {
		case !e.HasReservation():
			return nil, ErrAlreadyEnrolled
		case e.HasFutureReservation(now):
			superseded = append(superseded, e)
		}
	}
	return superseded, nil
}

func validatePreEnrollTarget(req *PreEnrollRequest) error {
	hasUser := req.UserID != nil
	hasEmail := req.Email != nil && strings.TrimSpace(*req.Email) != ""
	if hasUser == hasEmail {
		return fmt.Errorf("%w: exactly one of userId and email is required", ErrInvalidInput)
	}
	if hasUser && *req.UserID <= 0 {
		return fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
