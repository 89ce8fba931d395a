package horses

import "errors"

var (
	ErrHorseNotFound = errors.New("horse not found")
	ErrInvalidHorse  = errors.New("invalid horse")
	ErrNotOwner      = errors.New("not horse owner")
)
