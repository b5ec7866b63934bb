package leave

import "errors"

var (
	ErrNotFound         = errors.New("leave request not found")
	ErrAlreadyProcessed = errors.New("leave request already processed")
	ErrOverlap          = errors.New("overlapping leave request exists")
	ErrInvalidRange     = errors.New("end date before start date")
	ErrReasonRequired   = errors.New("rejection reason is required")
)
