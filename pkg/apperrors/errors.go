package apperrors

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyCandidate = errors.New("generator returned an empty candidate query")
	ErrExecution      = errors.New("query execution failed")
	ErrSyncInProgress = errors.New("a synchronization pass is already running")
)
