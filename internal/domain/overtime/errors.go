package overtime

import "errors"

var (
	ErrOutOfRangeHours    = errors.New("requested hours must be between 0.5 and 4.0")
	ErrEmptyJustification = errors.New("justification must not be blank")
	ErrAlreadyReviewed    = errors.New("overtime request has already been reviewed")
	ErrRequestNotFound    = errors.New("overtime request not found")
	ErrInvalidDecision    = errors.New("review decision must be 'approved' or 'rejected'")
)
