package enroll

import (
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// EnrollRequest запрос студента на запись
type EnrollRequest struct {
	Principal     domain.Principal
	ExamID        int64
	Collaborative bool
}

// PreEnrollRequest запрос преподавателя на предварительную запись студента.
// Заполнено ровно одно из полей UserID / Email.
type PreEnrollRequest struct {
	Principal     domain.Principal
	ExamID        int64
	Collaborative bool
	UserID        *int64
	Email         *string
}

// RemoveRequest запрос на удаление записи
type RemoveRequest struct {
	Principal   domain.Principal
	EnrolmentID int64
}

// Response модель ответа с записью
type Response struct {
	ID                   int64
	UserID               *int64
	ExamID               int64
	Collaborative        bool
	EnrolledOn           time.Time
	PreEnrolledUserEmail *string
	SupersededIDs        []int64 // удаленные записи с будущими бронированиями
}

func toResponse(e *domain.ExamEnrolment, superseded []int64) *Response {
	ref := e.ExamRef()
	return &Response{
		ID:                   e.ID,
		UserID:               e.UserID,
		ExamID:               ref.ID,
		Collaborative:        ref.Collaborative,
		EnrolledOn:           e.EnrolledOn,
		PreEnrolledUserEmail: e.PreEnrolledUserEmail,
		SupersededIDs:        superseded,
	}
}
