package errors

import "errors"

var (
	ErrForbiddenOperation = errors.New("operation is forbidden for this actor or event")
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrReviewDisabled     = errors.New("reviews are disabled for this event")
	ErrInvalidStatusInput = errors.New("invalid proposal status input")
	ErrInvalidReviewInput = errors.New("invalid review input")
)
