package domain

import "time"

// CollaborativeExam локальная прокси-запись экзамена, который хранится у удаленного пира.
// Revision - токен оптимистичной блокировки пира (аналог ETag).
type CollaborativeExam struct {
	ID              int64
	ExternalRef     string
	Revision        string
	Name            string
	State           ExamState
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Hash            string
	ExecutionType   ExecutionType
	TrialCount      *int
	DurationMinutes int
	Organisations   []string
	UpdatedAt       time.Time
}

// ToExam возвращает проекцию совместного экзамена по закэшированным полям
func (c *CollaborativeExam) ToExam() *Exam {
	return &Exam{
		ID:              c.ID,
		Name:            c.Name,
		State:           c.State,
		DurationMinutes: c.DurationMinutes,
		TrialCount:      c.TrialCount,
		ExecutionType:   c.ExecutionType,
		ActiveStart:     c.PeriodStart,
		ActiveEnd:       c.PeriodEnd,
		Organisations:   c.Organisations,
		Collaborative:   true,
	}
}
