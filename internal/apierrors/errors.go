// Package apierrors implements the error taxonomy of spec.md §7 as a
// generalization of the teacher's common/utils/ErrorHandling.go
// IAROSError/ErrorHandler pair: every component-local recoverable error
// becomes a typed PipelineError instead of a bare Go error, and the
// orchestrator maps it to an HTTP status and a {error:{...},request_id}
// envelope.
package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind is one of the six error categories spec.md §7 defines.
type Kind string

const (
	BadInput        Kind = "BadInput"
	NotFound        Kind = "NotFound"
	ExpressionError Kind = "ExpressionError"
	Upstream        Kind = "Upstream"
	Timeout         Kind = "Timeout"
	Internal        Kind = "Internal"
)

func (k Kind) httpStatus() int {
	switch k {
	case BadInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case ExpressionError:
		return http.StatusOK // never aborts the request; surfaced as a warning
	case Upstream:
		return http.StatusBadGateway
	case Timeout:
		return http.StatusGatewayTimeout
	case Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// PipelineError is the standardized error structure carried across every
// component boundary in VectorBid.
type PipelineError struct {
	ID         string
	Kind       Kind
	Code       string
	Message    string
	Details    string
	Operation  string
	RequestID  string
	Timestamp  time.Time
	HTTPStatus int
	Retryable  bool
	StackDigest string
	Cause      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Cause }

// New constructs a PipelineError of the given kind.
func New(kind Kind, code, operation, message string, cause error) *PipelineError {
	return &PipelineError{
		ID:         uuid.NewString(),
		Kind:       kind,
		Code:       code,
		Message:    message,
		Operation:  operation,
		Timestamp:  time.Now().UTC(),
		HTTPStatus: kind.httpStatus(),
		Retryable:  kind == Upstream || kind == Timeout,
		Cause:      cause,
	}
}

// NewBadInput builds a 400-class error for malformed request bodies.
func NewBadInput(operation, message string) *PipelineError {
	return New(BadInput, "BAD_INPUT", operation, message, nil)
}

// NewNotFound builds a 404-class error for missing rule packs/packages.
func NewNotFound(operation, message string) *PipelineError {
	return New(NotFound, "NOT_FOUND", operation, message, nil)
}

// NewExpressionError builds a rule-pack DSL warning. It is attached to the
// owning candidate/artifact as a warning and never aborts the request.
func NewExpressionError(operation, message string, cause error) *PipelineError {
	return New(ExpressionError, "EXPRESSION_ERROR", operation, message, cause)
}

// NewUpstream builds an error for an external (LLM) call failure.
func NewUpstream(operation, message string, cause error) *PipelineError {
	return New(Upstream, "UPSTREAM_ERROR", operation, message, cause)
}

// NewTimeout builds a deadline-exceeded error.
func NewTimeout(operation, message string) *PipelineError {
	return New(Timeout, "DEADLINE_EXCEEDED", operation, message, nil)
}

// NewInternal builds a 500-class error with a stack digest and no PII.
func NewInternal(operation, message string, cause error) *PipelineError {
	err := New(Internal, "INTERNAL_ERROR", operation, message, cause)
	err.StackDigest = captureStackDigest()
	return err
}

func captureStackDigest() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	if n > 512 {
		n = 512
	}
	return string(buf[:n])
}

// Log emits the error at a severity appropriate to its kind.
func (e *PipelineError) Log(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("error_id", e.ID),
		zap.String("error_kind", string(e.Kind)),
		zap.String("error_code", e.Code),
		zap.String("operation", e.Operation),
		zap.Int("http_status", e.HTTPStatus),
		zap.Bool("retryable", e.Retryable),
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.RequestID))
	}
	if e.Cause != nil {
		fields = append(fields, zap.Error(e.Cause))
	}
	switch e.Kind {
	case ExpressionError:
		logger.Warn(e.Message, fields...)
	case Internal:
		logger.Error(e.Message, fields...)
	default:
		logger.Info(e.Message, fields...)
	}
}

// envelope is the wire shape spec.md §6 requires for every error response.
type envelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details,omitempty"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

// WriteHTTP writes the standard error envelope to w with the error's
// mapped HTTP status.
func (e *PipelineError) WriteHTTP(w http.ResponseWriter, requestID string) {
	if requestID != "" {
		e.RequestID = requestID
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(e.HTTPStatus)

	var env envelope
	env.Error.Code = e.Code
	env.Error.Message = e.Message
	env.Error.Details = e.Details
	env.RequestID = e.RequestID
	_ = json.NewEncoder(w).Encode(env)
}

// As reports whether err is (or wraps) a *PipelineError, mirroring the
// standard library errors.As contract for ergonomic use at call sites.
func As(err error) (*PipelineError, bool) {
	var pe *PipelineError
	ok := errors.As(err, &pe)
	return pe, ok
}
