package j2534

import (
	"errors"
	"fmt"
)

// Status is the closed set of outcomes every bridge operation reports.
type Status int

const (
	Success Status = iota
	Unimplemented
	InvalidArgument
	InvalidState
	DriverError
)

func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case Unimplemented:
		return "Unimplemented"
	case InvalidArgument:
		return "InvalidArgument"
	case InvalidState:
		return "InvalidState"
	case DriverError:
		return "DriverError"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Sentinels for errors.Is against the error returned by Result.Err.
var (
	ErrUnimplemented   = &Error{Status: Unimplemented}
	ErrInvalidArgument = &Error{Status: InvalidArgument}
	ErrInvalidState    = &Error{Status: InvalidState}
	ErrDriver          = &Error{Status: DriverError}
)

// Error carries a non-success Status together with its diagnostic text.
// Code is the driver status code when the failure came from the driver.
type Error struct {
	Status  Status
	Message string
	Code    StatusCode
	Cause   error
}

func NewError(status Status, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Status.String()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same Status.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Status == e.Status
}

// Result is the status + optional message pair returned across the bridge
// boundary. Message is empty exactly when Status is Success. Code is the
// driver status code for failures reported by the driver, zero otherwise.
type Result struct {
	Status  Status
	Message string
	Code    StatusCode
}

// OK is the successful Result.
var OK = Result{Status: Success}

func Fail(status Status, format string, args ...any) Result {
	return Result{Status: status, Message: fmt.Sprintf(format, args...)}
}

func (r Result) IsOK() bool { return r.Status == Success }

// Err converts r into a Go error, nil on success.
func (r Result) Err() error {
	if r.Status == Success {
		return nil
	}
	return &Error{Status: r.Status, Message: r.Message, Code: r.Code}
}

func (r Result) String() string {
	if r.Status == Success {
		return r.Status.String()
	}
	return r.Status.String() + ": " + r.Message
}

// FormatStatus renders a driver status code for diagnostics. Vendor codes
// outside J2534-1 keep only their number.
func FormatStatus(code StatusCode) string {
	if name := code.String(); name != "" {
		return fmt.Sprintf("J2534 error code: %d (%s)", int32(code), name)
	}
	return fmt.Sprintf("J2534 error code: %d", int32(code))
}

// FromStatus translates a driver status code. Zero is success, everything
// else is a DriverError embedding the numeric code.
func FromStatus(code StatusCode) Result {
	if code == STATUS_NOERROR {
		return OK
	}
	return Result{Status: DriverError, Message: FormatStatus(code), Code: code}
}

// FromReadStatus is FromStatus for PassThruReadMsgs, where ERR_BUFFER_EMPTY
// means no data arrived within the timeout.
func FromReadStatus(code StatusCode) Result {
	if code == ERR_BUFFER_EMPTY {
		return OK
	}
	return FromStatus(code)
}

// StatusError is the error form of a non-zero driver status, nil for zero.
func StatusError(code StatusCode) error {
	if code == STATUS_NOERROR {
		return nil
	}
	return &Error{Status: DriverError, Message: FormatStatus(code), Code: code}
}

// FromError translates any error into a Result. *Error values keep their
// Status; other errors are reported as DriverError.
func FromError(err error) Result {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return Result{Status: e.Status, Message: err.Error(), Code: e.Code}
	}
	return Result{Status: DriverError, Message: err.Error()}
}
