package tracker

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrForbidden      = errors.New("forbidden")
	ErrDuplicateStake = errors.New("duplicate_stake")
)
