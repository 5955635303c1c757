package domain

import "time"

// ExamState состояние экзамена
type ExamState string

const (
	ExamStateDraft          ExamState = "DRAFT"
	ExamStateSaved          ExamState = "SAVED"
	ExamStatePublished      ExamState = "PUBLISHED"
	ExamStateInitialized    ExamState = "INITIALIZED"
	ExamStateStudentStarted ExamState = "STUDENT_STARTED"
	ExamStateReview         ExamState = "REVIEW"
	ExamStateReviewStarted  ExamState = "REVIEW_STARTED"
	ExamStateGraded         ExamState = "GRADED"
	ExamStateGradedLogged   ExamState = "GRADED_LOGGED"
	ExamStateArchived       ExamState = "ARCHIVED"
	ExamStateAborted        ExamState = "ABORTED"
	ExamStateRejected       ExamState = "REJECTED"
	ExamStateDeleted        ExamState = "DELETED"
)

// ExecutionType режим проведения экзамена
type ExecutionType string

const (
	ExecutionPublic   ExecutionType = "PUBLIC"
	ExecutionPrivate  ExecutionType = "PRIVATE"
	ExecutionMaturity ExecutionType = "MATURITY"
	ExecutionPrintout ExecutionType = "PRINTOUT"
)

// FinishedAttemptStates состояния попыток, которые учитываются в лимите trialCount
var FinishedAttemptStates = []ExamState{
	ExamStateGraded,
	ExamStateGradedLogged,
	ExamStateArchived,
	ExamStateAborted,
}

// ExamRef ссылка на экзамен: локальный или совместный (collaborative)
type ExamRef struct {
	ID            int64
	Collaborative bool
}

// Exam экзамен (только поля, нужные для записи и бронирования).
// Для совместного экзамена это проекция удаленного экзамена, ID = id локальной прокси-записи.
type Exam struct {
	ID              int64
	Name            string
	State           ExamState
	DurationMinutes int
	TrialCount      *int // nil = без ограничения
	ExecutionType   ExecutionType
	ActiveStart     time.Time
	ActiveEnd       time.Time
	CourseCode      string
	OwnerIDs        []int64
	InspectorIDs    []int64
	SoftwareIDs     []int64
	Organisations   []string // разрешенные домашние организации (только для совместных экзаменов)
	Collaborative   bool
}

// Ref возвращает ссылку на экзамен
func (e *Exam) Ref() ExamRef {
	return ExamRef{ID: e.ID, Collaborative: e.Collaborative}
}

// ActivePeriod возвращает период активности экзамена
func (e *Exam) ActivePeriod() TimeWindow {
	return TimeWindow{Start: e.ActiveStart, End: e.ActiveEnd}
}

// IsPublished true, если экзамен опубликован
func (e *Exam) IsPublished() bool {
	return e.State == ExamStatePublished
}

// HasEnded true, если период активности экзамена закончился
func (e *Exam) HasEnded(now time.Time) bool {
	return !now.Before(e.ActiveEnd)
}

// IsPrivate true для экзаменов, на которые нельзя записаться самостоятельно
func (e *Exam) IsPrivate() bool {
	return e.ExecutionType != ExecutionPublic && e.ExecutionType != ExecutionPrintout
}

// RequiresMachine true, если экзамен проходит за компьютером в аудитории
func (e *Exam) RequiresMachine() bool {
	return e.ExecutionType != ExecutionPrintout
}

// AllowsOrganisation проверяет, что домашняя организация студента допущена к экзамену.
// Пустой список - ограничений нет.
func (e *Exam) AllowsOrganisation(org string) bool {
	if len(e.Organisations) == 0 {
		return true
	}
	for _, o := range e.Organisations {
		if o == org {
			return true
		}
	}
	return false
}

// IsFinishedAttemptState true, если состояние попытки учитывается в лимите trialCount
func IsFinishedAttemptState(state ExamState) bool {
	for _, s := range FinishedAttemptStates {
		if s == state {
			return true
		}
	}
	return false
}
