package protocol

import (
	"errors"
	"fmt"
)

// Error exposes methods useful for categorizing errors.
type Error interface {
	error

	// MayHaveSucceeded returns true if the Error was triggered by a write that might have been
	// applied. For example, if the BLE link drops after a write request was queued, then the
	// client cannot tell if the iron received it.
	MayHaveSucceeded() bool

	// Temporary returns true if the Error might be the result of a transient condition, such as
	// the iron being out of range or asleep with BLE advertising paused.
	Temporary() bool
}

var (
	// ErrDeviceNotFound indicates no iron advertising the bulk service answered the scan before
	// the deadline.
	ErrDeviceNotFound = NewError("no Pinecil found", false, true)
	// ErrNotConnected indicates an operation needed an open GATT session.
	ErrNotConnected = NewError("iron not connected", false, false)
	// ErrNotSupported indicates the characteristic is unknown to this package or absent from
	// the iron's GATT table (for example, settings added in newer IronOS releases).
	ErrNotSupported = NewError("characteristic not supported", false, false)
	// ErrConnectionFailed is matched by every *ConnectionError.
	ErrConnectionFailed = errors.New("connection failure")
	// ErrOutOfRange is matched by every *RangeError.
	ErrOutOfRange = errors.New("value out of range")
	// ErrInvalidValue is matched by every *ValueError.
	ErrInvalidValue = errors.New("invalid value")
	// ErrDecode is matched by every *DecodeError.
	ErrDecode = errors.New("malformed payload")
)

type CommandError struct {
	Err               error
	PossibleSuccess   bool
	PossibleTemporary bool
}

func NewError(message string, mayHaveSucceeded bool, temporary bool) error {
	return &CommandError{Err: errors.New(message), PossibleSuccess: mayHaveSucceeded, PossibleTemporary: temporary}
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func (e *CommandError) MayHaveSucceeded() bool {
	return e.PossibleSuccess
}

func (e *CommandError) Temporary() bool {
	return e.PossibleTemporary
}

// ConnectionError wraps a transport failure. Op is one of "connect", "discover", "read" or
// "write".
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// MayHaveSucceeded is true for writes: GATT write requests can be lost after the peer applied them.
func (e *ConnectionError) MayHaveSucceeded() bool {
	return e.Op == "write"
}

func (e *ConnectionError) Temporary() bool {
	return true
}

// RangeError is returned when a value falls outside the range a setting accepts. Min and Max are
// expressed in the same units as Value.
type RangeError struct {
	Characteristic string
	Value          any
	Min            any
	Max            any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: value %v out of range [%v, %v]", e.Characteristic, e.Value, e.Min, e.Max)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

func (e *RangeError) MayHaveSucceeded() bool { return false }
func (e *RangeError) Temporary() bool        { return false }

// ValueError is returned when a value has the wrong type for a setting or cannot be parsed.
type ValueError struct {
	Characteristic string
	Value          any
	Reason         string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: invalid value %v: %s", e.Characteristic, e.Value, e.Reason)
}

func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

func (e *ValueError) MayHaveSucceeded() bool { return false }
func (e *ValueError) Temporary() bool        { return false }

// DecodeError is returned when a payload read from the iron does not match the layout of its
// characteristic.
type DecodeError struct {
	Characteristic string
	Payload        []byte
	Reason         string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: cannot decode %02x: %s", e.Characteristic, e.Payload, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) MayHaveSucceeded() bool { return false }
func (e *DecodeError) Temporary() bool        { return false }

// MayHaveSucceeded returns true if err is an Error that indicates the write may have been
// applied but the client did not receive a confirmation from the iron.
func MayHaveSucceeded(err error) bool {
	var commErr Error
	if errors.As(err, &commErr) && commErr.MayHaveSucceeded() {
		return true
	}
	return false
}

// Temporary returns true if err is an Error that indicates the operation failed due to possibly
// transient conditions that do not require user action to resolve.
func Temporary(err error) bool {
	var commErr Error
	if errors.As(err, &commErr) && commErr.Temporary() {
		return true
	}
	return false
}

// ShouldRetry returns true if the client may safely repeat the operation that triggered an error.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	var e Error
	if errors.As(err, &e) {
		if e.MayHaveSucceeded() {
			return false
		}
		if e.Temporary() {
			return true
		}
	}
	return false
}
