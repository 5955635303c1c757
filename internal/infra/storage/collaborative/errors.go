package collaborative

import "errors"

var (
	ErrExamNotFound = errors.New("collaborative.repository: collaborative exam not found")
	ErrBuildQuery   = errors.New("collaborative.repository: failed to build query")
	ErrExecQuery    = errors.New("collaborative.repository: failed to execute query")
	ErrScanRow      = errors.New("collaborative.repository: failed to scan row")
)
