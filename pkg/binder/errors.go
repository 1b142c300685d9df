package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("binder: unsupported media type")
	ErrFailedToParseJSON    = errors.New("binder: failed to parse json body")
	ErrBodyTooLarge         = errors.New("binder: request body too large")
)
