package engine

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error so callers can branch on propagation
// policy without string matching.
type Kind string

const (
	KindInvalidFrame          Kind = "InvalidFrame"
	KindBufferOverflow        Kind = "BufferOverflow"
	KindServiceUnavailable    Kind = "ServiceUnavailable"
	KindServiceTimeout        Kind = "ServiceTimeout"
	KindDecodeFailure         Kind = "DecodeFailure"
	KindFiltered              Kind = "Filtered"
	KindTranslationSuspicious Kind = "TranslationSuspicious"
	KindConfigError           Kind = "ConfigError"
)

// Error wraps a Kind with the sentinel errors below so that errors.Is still
// works against the named sentinels while callers can also switch on Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, sentinel error, detail string) *Error {
	if detail == "" {
		return &Error{Kind: kind, Err: sentinel}
	}
	return &Error{Kind: kind, Err: fmt.Errorf("%w: %s", sentinel, detail)}
}

var (
	ErrInvalidFrame          = errors.New("invalid audio frame")
	ErrBufferOverflow        = errors.New("audio buffer duration exceeded max_buffer_duration_ms")
	ErrServiceUnavailable    = errors.New("external service unavailable")
	ErrServiceTimeout        = errors.New("external service call timed out")
	ErrDecodeFailure         = errors.New("failed to decode external service response")
	ErrFiltered              = errors.New("asr output rejected by hallucination filter")
	ErrTranslationSuspicious = errors.New("translation quality gate flagged output as unusable")
	ErrConfigError           = errors.New("invalid configuration")

	ErrNilProvider      = errors.New("required provider is nil")
	ErrContextCancelled = errors.New("operation cancelled by context")
)

func NewInvalidFrame(detail string) error          { return newErr(KindInvalidFrame, ErrInvalidFrame, detail) }
func NewBufferOverflow(detail string) error         { return newErr(KindBufferOverflow, ErrBufferOverflow, detail) }
func NewServiceUnavailable(detail string) error     { return newErr(KindServiceUnavailable, ErrServiceUnavailable, detail) }
func NewServiceTimeout(detail string) error         { return newErr(KindServiceTimeout, ErrServiceTimeout, detail) }
func NewDecodeFailure(detail string) error          { return newErr(KindDecodeFailure, ErrDecodeFailure, detail) }
func NewTranslationSuspicious(detail string) error  { return newErr(KindTranslationSuspicious, ErrTranslationSuspicious, detail) }
func NewConfigError(detail string) error            { return newErr(KindConfigError, ErrConfigError, detail) }

// KindOf extracts the Kind from err, if any Error in its chain carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
