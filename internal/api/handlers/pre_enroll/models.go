package pre_enroll

import (
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	enrollUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/enroll"
)

// PreEnrollRequest HTTP request model. Указывается userId или email.
type PreEnrollRequest struct {
	UserID        *int64  `json:"userId,omitempty" validate:"omitempty,gt=0"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Collaborative bool    `json:"collaborative"`
}

// EnrolmentResponse HTTP response model
type EnrolmentResponse struct {
	ID                   int64   `json:"id"`
	UserID               *int64  `json:"userId,omitempty"`
	ExamID               int64   `json:"examId"`
	Collaborative        bool    `json:"collaborative"`
	EnrolledOn           string  `json:"enrolledOn"`
	PreEnrolledUserEmail *string `json:"preEnrolledUserEmail,omitempty"`
	SupersededIDs        []int64 `json:"supersededEnrolmentIds,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *PreEnrollRequest) ToUseCaseRequest(principal domain.Principal, examID int64) *enrollUC.PreEnrollRequest {
	return &enrollUC.PreEnrollRequest{
		Principal:     principal,
		ExamID:        examID,
		Collaborative: r.Collaborative,
		UserID:        r.UserID,
		Email:         r.Email,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *enrollUC.Response) *EnrolmentResponse {
	return &EnrolmentResponse{
		ID:                   resp.ID,
		UserID:               resp.UserID,
		ExamID:               resp.ExamID,
		Collaborative:        resp.Collaborative,
		EnrolledOn:           resp.EnrolledOn.Format(time.RFC3339),
		PreEnrolledUserEmail: resp.PreEnrolledUserEmail,
		SupersededIDs:        resp.SupersededIDs,
	}
}
