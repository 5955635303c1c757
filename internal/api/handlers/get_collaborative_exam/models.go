package get_collaborative_exam

import (
	"encoding/json"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/service/collaborative"
)

// CollaborativeExamResponse HTTP response model
type CollaborativeExamResponse struct {
	ID              int64           `json:"id"`
	ExternalRef     string          `json:"externalRef"`
	Revision        string          `json:"rev"`
	Name            string          `json:"name"`
	State           string          `json:"state"`
	PeriodStart     *string         `json:"periodStart,omitempty"`
	PeriodEnd       *string         `json:"periodEnd,omitempty"`
	Hash            string          `json:"hash"`
	ExecutionType   string          `json:"executionType"`
	TrialCount      *int            `json:"trialCount,omitempty"`
	DurationMinutes int             `json:"duration"`
	Organisations   []string        `json:"organisations"`
	Content         json.RawMessage `json:"content,omitempty"`
}

// FromServiceResponse конвертирует скачанный экзамен в HTTP response
func FromServiceResponse(d *collaborative.DownloadedExam) *CollaborativeExamResponse {
	e := d.Exam
	orgs := e.Organisations
	if orgs == nil {
		orgs = []string{}
	}
	return &CollaborativeExamResponse{
		ID:              e.ID,
		ExternalRef:     e.ExternalRef,
		Revision:        e.Revision,
		Name:            e.Name,
		State:           string(e.State),
		PeriodStart:     formatTime(e.PeriodStart),
		PeriodEnd:       formatTime(e.PeriodEnd),
		Hash:            e.Hash,
		ExecutionType:   string(e.ExecutionType),
		TrialCount:      e.TrialCount,
		DurationMinutes: e.DurationMinutes,
		Organisations:   orgs,
		Content:         d.Content,
	}
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
