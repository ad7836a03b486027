package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	// ErrUpstream marks failures of the AI collaborator (network, timeout, quota).
	ErrUpstream = errors.New("upstream error")
)
