// Package errs provides structured error types shared across fdtbridge.
package errs

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// Code identifies a bridge error category.
type Code string

const (
	// CodeConfig indicates malformed configuration or schedule input.
	CodeConfig Code = "config"
	// CodeProtocol indicates a violation of the dataset stream protocol.
	CodeProtocol Code = "protocol"
	// CodeNetwork indicates a transport-level failure.
	CodeNetwork Code = "network"
	// CodeDownload indicates a failed artifact download.
	CodeDownload Code = "download"
	// CodeDecode indicates a malformed payload that could not be decoded.
	CodeDecode Code = "decode"
)

// E captures structured error information produced across the bridge.
type E struct {
	Op       string
	Code     Code
	Datasets []string
	HTTP     int
	Message  string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the operation and error code.
func New(op string, code Code, opts ...Option) *E {
	e := &E{
		Op:       strings.TrimSpace(op),
		Code:     code,
		Datasets: nil,
		HTTP:     0,
		Message:  "",
		cause:    nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithHTTP records the associated HTTP status code.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithDatasets records the dataset names involved in the failed operation.
func WithDatasets(names ...string) Option {
	return func(e *E) {
		for _, name := range names {
			trimmed := strings.TrimSpace(name)
			if trimmed == "" {
				continue
			}
			e.Datasets = append(e.Datasets, trimmed)
		}
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	op := strings.TrimSpace(e.Op)
	if op == "" {
		op = "unknown"
	}
	parts = append(parts, "op="+op)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.HTTP > 0 {
		parts = append(parts, "http="+strconv.Itoa(e.HTTP))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if len(e.Datasets) > 0 {
		names := make([]string, len(e.Datasets))
		copy(names, e.Datasets)
		sort.Strings(names)
		quoted := make([]string, 0, len(names))
		for _, name := range names {
			quoted = append(quoted, strconv.Quote(name))
		}
		parts = append(parts, "datasets="+strings.Join(quoted, ","))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// HasCode reports whether err carries the given bridge error code.
func HasCode(err error, code Code) bool {
	var e *E
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
