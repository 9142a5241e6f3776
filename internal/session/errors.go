package session

import "errors"

var (
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrUninitialized     = errors.New("uninitialized_session")
	ErrDuplicateEvent    = errors.New("duplicate_event")
)
