package store

import "errors"

var (
	ErrNotFound              = errors.New("notification not found")
	ErrDuplicateNotification = errors.New("duplicate notification")
	ErrInvalidNotification   = errors.New("invalid notification")
)
