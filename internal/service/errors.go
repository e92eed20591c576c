package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidAddress     = errors.New("invalid ip address format")
	ErrDuplicateAddress   = errors.New("address already in allow-list")
	ErrAddressNotFound    = errors.New("allow-list entry not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many tokens issued for subject")
	ErrTokenAlreadyActive = errors.New("an active token already exists for subject")
	ErrSubjectConsumed    = errors.New("subject already completed a single-use registration")
)
