package repository

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateAddress  = errors.New("address already in allow-list")
	ErrActiveTokenExists = errors.New("an active token already exists for subject")
)
