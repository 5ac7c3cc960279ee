package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidName   = errors.New("invalid player name")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrInvalidGoals  = errors.New("goals must not be negative")
)
