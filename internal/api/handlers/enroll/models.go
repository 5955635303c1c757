package enroll

import (
	"time"

	enrollUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/enroll"
)

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
