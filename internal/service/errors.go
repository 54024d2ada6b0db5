// FILE: internal/service/errors.go
package service

import "errors"

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrJobNotTerminal    = errors.New("job is still running")
	ErrSourceNotFound    = errors.New("source content not found")
	ErrInvalidKind       = errors.New("unknown artifact kind")
	ErrInvalidParameters = errors.New("invalid generation parameters")
)
