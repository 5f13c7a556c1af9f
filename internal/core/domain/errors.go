package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUpstream     = errors.New("upstream failure")
	ErrTemporary    = errors.New("temporary failure")
	ErrOverloaded   = errors.New("overloaded")
)

// Request-level causes. Each is wrapped with a kind above before leaving the core.
var (
	ErrNoFile       = errors.New("no file uploaded")
	ErrInvalidPDF   = errors.New("invalid pdf")
	ErrNoImage      = errors.New("no image uploaded")
	ErrEmptyImage   = errors.New("empty image received")
	ErrInvalidImage = errors.New("invalid image data")
	ErrNoFace       = errors.New("no face detected")
	ErrNoQuestion   = errors.New("no question provided")
	ErrNoDocuments  = errors.New("no documents available")
	ErrInvalidJSON  = errors.New("invalid json body")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// UpstreamError carries a third-party failure whose message is returned to
// API callers unchanged.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e == nil || e.Err == nil {
		return "upstream error"
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func NewUpstreamError(service string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Service: service, Err: err}
}
