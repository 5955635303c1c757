package exam

import "errors"

var (
	ErrExamNotFound = errors.New("exam.repository: exam not found")
	ErrBuildQuery   = errors.New("exam.repository: failed to build query")
	ErrExecQuery    = errors.New("exam.repository: failed to execute query")
	ErrScanRow      = errors.New("exam.repository: failed to scan row")
)
