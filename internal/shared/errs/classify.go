package errs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"syscall"

	"github.com/go-playground/validator/v10"
)

// HTTPStatusError reports an upstream response with a non-2xx status
type HTTPStatusError struct {
	StatusCode int
	Method     string
	Endpoint   string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d %s", e.Method, e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
}

// Classify maps any failure to exactly one classified Error.
// Already-classified errors are returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return FromStatus(statusErr)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Message: fe.Error(),
			})
		}
		return Validation("input validation failed", fields)
	}

	if errors.Is(err, context.Canceled) {
		return New(CategoryInternal, CodeCancelled, "request cancelled by caller", WithCause(err))
	}

	if isTimeout(err) {
		return New(CategoryNetwork, CodeTimeout, "upstream request timed out", WithCause(err))
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return New(CategoryNetwork, CodeConnectionRefused, "connection refused by upstream server", WithCause(err))
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return New(CategoryNetwork, CodeUnreachable, "upstream host unreachable", WithCause(err))
	}

	if isTransport(err) {
		return New(CategoryNetwork, CodeNetwork, "network failure talking to upstream", WithCause(err))
	}

	if fileErr := classifyFile(err); fileErr != nil {
		return fileErr
	}

	return New(CategoryInternal, CodeInternal, "unexpected internal error", WithCause(err))
}

// FromStatus classifies an HTTP status failure
func FromStatus(e *HTTPStatusError) *Error {
	details := map[string]any{
		"status":   e.StatusCode,
		"endpoint": e.Endpoint,
	}
	if e.Body != "" {
		details["body"] = e.Body
	}

	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return New(CategorySession, CodeSessionExpired,
			"upstream session was rejected; reconnect the Money Manager web server or reset the session",
			WithDetails(details), WithCause(e))
	case e.StatusCode >= 500:
		return New(CategoryAPI, CodeServerError,
			fmt.Sprintf("upstream server error (HTTP %d)", e.StatusCode),
			WithDetails(details), WithCause(e), WithRetryable(true))
	default:
		return New(CategoryAPI, CodeClientError,
			fmt.Sprintf("upstream rejected the request (HTTP %d)", e.StatusCode),
			WithDetails(details), WithCause(e))
	}
}

// IsRetryable reports whether err classifies as retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Retryable()
}

// File classifies a local file-system failure. path is added to details.
func File(err error, path string) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	e := classifyFile(err)
	if e == nil {
		e = New(CategoryFile, CodeFileIO, "file operation failed", WithCause(err))
	}
	return New(e.category, e.code, e.message, WithCause(err), WithDetail("path", path))
}

func classifyFile(err error) *Error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return New(CategoryFile, CodeFileNotFound, "file not found", WithCause(err))
	case errors.Is(err, fs.ErrPermission):
		return New(CategoryFile, CodePermissionDenied, "permission denied", WithCause(err))
	}

	var pathErr *fs.PathError
	var opErr *net.OpError
	if errors.As(err, &pathErr) && !errors.As(err, &opErr) {
		return New(CategoryFile, CodeFileIO, "file operation failed", WithCause(err))
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isTransport(err error) bool {
	var urlErr *url.Error
	var opErr *net.OpError
	switch {
	case errors.As(err, &urlErr), errors.As(err, &opErr):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return true
	}
	return false
}
