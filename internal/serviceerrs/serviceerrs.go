package serviceerrs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("already exists")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPersistence  = errors.New("persistence failure")
	ErrHashing      = errors.New("hashing failure")
	ErrUpstream     = errors.New("upstream failure")
	ErrConfig       = errors.New("invalid configuration")
)

type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e *TooManyRequestsError) Error() string {
	if e.RetryAfter == 0 {
		return "too many requests"
	}
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// UpstreamError wraps any failure of the completion provider. Its message
// carries provider detail for logs only; clients get a generic text.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", ErrUpstream, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
