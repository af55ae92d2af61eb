package errs

import (
	"fmt"
	"maps"
)

// Category is the closed failure taxonomy surfaced to tool callers
type Category string

const (
	CategoryNetwork    Category = "NETWORK"
	CategoryAPI        Category = "API"
	CategoryValidation Category = "VALIDATION"
	CategorySession    Category = "SESSION"
	CategoryFile       Category = "FILE"
	CategoryInternal   Category = "INTERNAL"
)

// Stable error codes. Callers may match on these; never rename.
const (
	CodeConnectionRefused = "NETWORK_CONNECTION_REFUSED"
	CodeUnreachable       = "NETWORK_UNREACHABLE"
	CodeTimeout           = "NETWORK_TIMEOUT"
	CodeNetwork           = "NETWORK_ERROR"

	CodeClientError     = "API_CLIENT_ERROR"
	CodeServerError     = "API_SERVER_ERROR"
	CodeInvalidResponse = "API_INVALID_RESPONSE"

	CodeValidation = "VALIDATION_FAILED"

	CodeSessionExpired = "SESSION_EXPIRED"

	CodeFileNotFound     = "FILE_NOT_FOUND"
	CodePermissionDenied = "FILE_PERMISSION_DENIED"
	CodeFileIO           = "FILE_IO_ERROR"

	CodeInternal  = "INTERNAL_ERROR"
	CodeCancelled = "REQUEST_CANCELLED"
)

// Error is a classified failure. It is built once where the failure is
// detected and passed up unchanged; there are no setters.
type Error struct {
	category  Category
	code      string
	message   string
	retryable bool
	details   map[string]any
	cause     error
}

// Option adjusts an Error while it is being constructed
type Option func(*Error)

// WithDetail adds a single structured detail entry
func WithDetail(key string, value any) Option {
	return func(e *Error) { e.details[key] = value }
}

// WithDetails merges structured detail entries
func WithDetails(details map[string]any) Option {
	return func(e *Error) { maps.Copy(e.details, details) }
}

// WithHint attaches a human-readable suggestion for the caller
func WithHint(hint string) Option {
	return WithDetail("hint", hint)
}

// WithCause records the underlying error for errors.Is/As
func WithCause(err error) Option {
	return func(e *Error) { e.cause = err }
}

// WithRetryable overrides the category default
func WithRetryable(retryable bool) Option {
	return func(e *Error) { e.retryable = retryable }
}

// New creates a classified error. Retryability defaults by category:
// NETWORK and SESSION retry, everything else does not.
func New(category Category, code, message string, opts ...Option) *Error {
	e := &Error{
		category:  category,
		code:      code,
		message:   message,
		retryable: category == CategoryNetwork || category == CategorySession,
		details:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validation builds a VALIDATION error with a field-level error list
func Validation(message string, fields []FieldError) *Error {
	return New(CategoryValidation, CodeValidation, message, WithDetail("fields", fields))
}

// FieldError describes one rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Category() Category { return e.category }

func (e *Error) Code() string { return e.code }

func (e *Error) Message() string { return e.message }

func (e *Error) Retryable() bool { return e.retryable }

// Details returns a copy of the structured detail map
func (e *Error) Details() map[string]any {
	return maps.Clone(e.details)
}

// Detail returns one detail entry
func (e *Error) Detail(key string) (any, bool) {
	v, ok := e.details[key]
	return v, ok
}

// Payload is the machine-parseable form of an Error emitted at the tool boundary
type Payload struct {
	Code      string         `json:"code"`
	Category  Category       `json:"category"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// Payload converts the error for serialization
func (e *Error) Payload() Payload {
	p := Payload{
		Code:      e.code,
		Category:  e.category,
		Message:   e.message,
		Retryable: e.retryable,
	}
	if len(e.details) > 0 {
		p.Details = e.Details()
	}
	return p
}
