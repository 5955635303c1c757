package update_collaborative_exam

import (
	"encoding/json"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// UpdateExamRequest HTTP request model
type UpdateExamRequest struct {
	Content json.RawMessage `json:"content" validate:"required"`
}

// UpdateExamResponse HTTP response model
type UpdateExamResponse struct {
	ID          int64  `json:"id"`
	ExternalRef string `json:"externalRef"`
	Revision    string `json:"rev"`
}

// FromServiceResponse конвертирует результат в HTTP response
func FromServiceResponse(e *domain.CollaborativeExam) *UpdateExamResponse {
	return &UpdateExamResponse{
		ID:          e.ID,
		ExternalRef: e.ExternalRef,
		Revision:    e.Revision,
	}
}
