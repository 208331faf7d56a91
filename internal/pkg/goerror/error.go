package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned by lookups that find nothing.
var ErrNotFound = errors.New("resource not found")

// Type buckets errors by who is at fault.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code identifies an error condition independently of its message. It
// decides both the HTTP status and the "error" value written to clients.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeTooManyRequest
	// CodeUnsupportedChannel means no delivery provider serves the channel.
	CodeUnsupportedChannel
	// CodeInvalidCode covers wrong, expired and already used one-time codes.
	CodeInvalidCode
)

type codeInfo struct {
	name   string
	slug   string
	status int
}

var codes = map[Code]codeInfo{
	CodeInternal:           {"ERROR_CODE_INTERNAL", "internal_error", http.StatusInternalServerError},
	CodeInvalidFormat:      {"ERROR_CODE_INVALID_FORMAT", "invalid_input", http.StatusBadRequest},
	CodeInvalidInput:       {"ERROR_CODE_INVALID_INPUT", "invalid_input", http.StatusBadRequest},
	CodeNotFound:           {"ERROR_CODE_NOT_FOUND", "not_found", http.StatusNotFound},
	CodeTooManyRequest:     {"ERROR_CODE_TOO_MANY_REQUESTS", "rate_limited", http.StatusTooManyRequests},
	CodeUnsupportedChannel: {"ERROR_CODE_UNSUPPORTED_CHANNEL", "unsupported_channel", http.StatusBadRequest},
	CodeInvalidCode:        {"ERROR_CODE_INVALID_CODE", "invalid_code", http.StatusBadRequest},
}

func (c Code) info() codeInfo {
	if ci, ok := codes[c]; ok {
		return ci
	}
	return codes[CodeInternal]
}

func (c Code) String() string { return c.info().name }

// Slug is the value of the "error" field in JSON error responses.
func (c Code) Slug() string { return c.info().slug }

// Status is the HTTP status the code maps to. Unknown codes are 500.
func (c Code) Status() int { return c.info().status }

// Error carries a client-safe message, a Type and a Code on top of an
// optional wrapped cause.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	}

	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeBusiness:
		return "Logical business not meet with requirement"
	case TypeServer:
		return "Internal error"
	}
	return "Unknown error"
}

// String is the verbose form used in logs.
func (e *Error) String() string {
	return fmt.Sprintf("Error Type: %s, Code: %s, Message: %s, Underlying Error: %v", e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string { return e.msg }
func (e *Error) Type() Type { return e.errType }
func (e *Error) Code() Code { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) StatusCode() int { return e.code.Status() }

// NewServer wraps an unexpected failure. Its message is never shown to clients.
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", errType: TypeServer, code: CodeInternal}
}

// NewBusiness reports a rule violation with a client-facing message.
func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, errType: TypeBusiness, code: code}
}

// NewInvalidInput wraps a validator error, or builds field errors from
// key/value pairs when err is nil. An odd pair list is a format error.
func NewInvalidInput(err error, kv ...string) error {
	e := &Error{err: err, msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}
	if err != nil {
		return e
	}

	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidFormat reports a request that could not be decoded.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return &Error{msg: msg, errType: TypeValidation, code: CodeInvalidFormat}
}
