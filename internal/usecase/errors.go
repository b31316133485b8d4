package usecase

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownSource    = errors.New("unknown listing source")
	ErrRefreshThrottled = errors.New("refresh throttled")
)
