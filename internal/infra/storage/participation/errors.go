package participation

import "errors"

var (
	ErrBuildQuery = errors.New("participation.repository: failed to build query")
	ErrExecQuery  = errors.New("participation.repository: failed to execute query")
	ErrScanRow    = errors.New("participation.repository: failed to scan row")
)
