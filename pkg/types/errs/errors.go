package errs

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrRecordNotFound    = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	// backend failures, reported to callers as 500
	ErrStorageBackend  = errors.New("storage backend error")
	ErrPersistence     = errors.New("persistence error")
	ErrBackendQuery    = errors.New("backend query error")
	ErrLabelingService = errors.New("labeling service error")
	ErrMalformedEvent  = errors.New("malformed event")
)
