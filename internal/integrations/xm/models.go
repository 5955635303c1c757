package xm

import (
	"encoding/json"
	"time"
)

// Exam экзамен в хранилище пира. Content - полное содержимое экзамена, передается как есть.
type Exam struct {
	ID            string          `json:"_id"`
	Rev           string          `json:"_rev"`
	Name          string          `json:"name"`
	State         string          `json:"state"`
	PeriodStart   *time.Time      `json:"periodStart,omitempty"`
	PeriodEnd     *time.Time      `json:"periodEnd,omitempty"`
	Hash          string          `json:"hash"`
	ExecutionType string          `json:"executionType"`
	TrialCount    *int            `json:"trialCount,omitempty"`
	Duration      int             `json:"duration"`
	Organisations []string        `json:"organisations,omitempty"`
	Content       json.RawMessage `json:"content,omitempty"`
}

// UpdateExamRequest тело PUT-запроса. Rev - последняя известная ревизия.
type UpdateExamRequest struct {
	Rev     string          `json:"rev"`
	Content json.RawMessage `json:"content"`
}

// RevisionResponse ответ пира на изменение: новая ревизия в поле rev или _rev
type RevisionResponse struct {
	Rev           string `json:"rev"`
	UnderscoreRev string `json:"_rev"`
}

// Revision возвращает новую ревизию из ответа
func (r RevisionResponse) Revision() string {
	if r.Rev != "" {
		return r.Rev
	}
	return r.UnderscoreRev
}

// ErrorResponse модель ошибки пира
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
