package protocol

import (
	"errors"
	"fmt"
)

// Core protocol errors
var (
	// Decoding errors

	ErrUnknownPacket    = errors.New("unknown packet type")
	ErrMalformedPacket  = errors.New("malformed packet")
	ErrLengthOutOfRange = errors.New("length field out of range")
	ErrUnknownInput     = errors.New("unknown input event kind")
	ErrUnknownUpdate    = errors.New("unknown update kind")

	// Transport errors

	ErrNoPacket        = errors.New("no packet available")
	ErrTransportClosed = errors.New("transport is closed")
	ErrUnknownPeer     = errors.New("unknown peer")
	ErrPacketTooLarge  = errors.New("packet too large")
	ErrBindFailed      = errors.New("bind failed")
	ErrDialFailed      = errors.New("dial failed")
)

// ErrorCode classifies protocol errors for logs and the monitor.
type ErrorCode int

const (
	ErrorCodeSuccess ErrorCode = 0

	// Decoding error codes (3000-3999)

	ErrorCodeUnknownPacket    ErrorCode = 3001
	ErrorCodeMalformedPacket  ErrorCode = 3002
	ErrorCodeLengthOutOfRange ErrorCode = 3003
	ErrorCodeUnknownInput     ErrorCode = 3004
	ErrorCodeUnknownUpdate    ErrorCode = 3005

	// Transport error codes (7000-7999)

	ErrorCodeNoPacket        ErrorCode = 7001
	ErrorCodeTransportClosed ErrorCode = 7002
	ErrorCodeUnknownPeer     ErrorCode = 7003
	ErrorCodePacketTooLarge  ErrorCode = 7004
	ErrorCodeBindFailed      ErrorCode = 7005
	ErrorCodeDialFailed      ErrorCode = 7006

	ErrorCodeUnknownError ErrorCode = 9999
)

// Error is a protocol error carrying a code and the offset or packet it
// relates to.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewProtocolError creates a new protocol error.
func NewProtocolError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds a key to the error context.
func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

var errorCodes = []struct {
	err  error
	code ErrorCode
}{
	{ErrUnknownPacket, ErrorCodeUnknownPacket},
	{ErrLengthOutOfRange, ErrorCodeLengthOutOfRange},
	{ErrUnknownInput, ErrorCodeUnknownInput},
	{ErrUnknownUpdate, ErrorCodeUnknownUpdate},
	{ErrMalformedPacket, ErrorCodeMalformedPacket},
	{ErrNoPacket, ErrorCodeNoPacket},
	{ErrTransportClosed, ErrorCodeTransportClosed},
	{ErrUnknownPeer, ErrorCodeUnknownPeer},
	{ErrPacketTooLarge, ErrorCodePacketTooLarge},
	{ErrBindFailed, ErrorCodeBindFailed},
	{ErrDialFailed, ErrorCodeDialFailed},
}

// GetErrorCode returns the code of the first known sentinel wrapped by err.
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeSuccess
	}
	var protocolErr *Error
	if errors.As(err, &protocolErr) && protocolErr.Code != ErrorCodeUnknownError {
		return protocolErr.Code
	}
	for _, known := range errorCodes {
		if errors.Is(err, known.err) {
			return known.code
		}
	}
	return ErrorCodeUnknownError
}

// WrapError wraps err into a protocol Error.
func WrapError(err error, message string) *Error {
	return NewProtocolError(GetErrorCode(err), message, err)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedPacket}, args...)...)
}
