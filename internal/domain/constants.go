package domain

// Ограничения бронирования
const (
	MinReservationMinutes = 5
	MaxReservationMinutes = 24 * 60
	// MaxAccessibilityRequirements ограничивает размер списка запрошенных средств доступности
	MaxAccessibilityRequirements = 32
)

// Значения по умолчанию для фоновых задач
const (
	DefaultNoShowSchedule  = "@every 1h"
	DefaultNoShowBatchSize = 500
)

// DateFormat формат календарной даты YYYY-MM-DD
const DateFormat = "2006-01-02"

// Исходы операций для метрик
const (
	OutcomeCreated     = "created"
	OutcomeReplaced    = "replaced"
	OutcomeRejected    = "rejected"
	OutcomeConflict    = "conflict"
	OutcomeFailed      = "failed"
	OutcomeSuperseded  = "superseded"
	OutcomePreEnrolled = "pre_enrolled"
)
