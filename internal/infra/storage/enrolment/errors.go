package enrolment

import "errors"

var (
	ErrEnrolmentNotFound = errors.New("enrolment.repository: enrolment not found")
	ErrBuildQuery        = errors.New("enrolment.repository: failed to build query")
	ErrExecQuery         = errors.New("enrolment.repository: failed to execute query")
	ErrScanRow           = errors.New("enrolment.repository: failed to scan row")

	// ErrDuplicateEnrolment нарушение уникальности предварительной записи (email, экзамен)
	ErrDuplicateEnrolment = errors.New("enrolment.repository: enrolment already exists")
)
