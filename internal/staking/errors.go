package staking

import "errors"

var (
	ErrInvalidPercentage = errors.New("invalid_percentage")
	ErrInvalidMarkup     = errors.New("invalid_markup")
	ErrMissingStaker     = errors.New("missing_staker")
	ErrAlreadySettled    = errors.New("stake_already_settled")
	ErrInvalidTransition = errors.New("invalid_transition")
)
