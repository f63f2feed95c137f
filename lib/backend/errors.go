package backend

import "fmt"

// Code enumerates the structural error codes exchanged with clients.
// Per-key outcomes (not found, buffer too small, no
// more keys) are never represented as a Code; they are reported in-band as
// sentinel sizes (mode.KeyNotFound, mode.SizeTooSmall, mode.NoMoreKeys)
// instead.
type Code int

const (
	OK Code = iota
	ErrAllocation
	ErrInvalidMID
	ErrInvalidArgs
	ErrInvalidProvider
	ErrInvalidDatabase
	ErrInvalidBackend
	ErrInvalidConfig
	ErrInvalidToken
	ErrFromTransport
	ErrOpUnsupported
	ErrOpForbidden
	ErrKeyNotFound
	ErrBufferSize
	ErrKeyExists
	ErrCorruption
	ErrIO
	ErrIncomplete
	ErrTimeout
	ErrAborted
	ErrBusy
	ErrExpired
	ErrTryAgain
	ErrOther
)

var codeNames = map[Code]string{
	OK:                  "SUCCESS",
	ErrAllocation:       "ALLOCATION",
	ErrInvalidMID:       "INVALID_MID",
	ErrInvalidArgs:      "INVALID_ARGS",
	ErrInvalidProvider:  "INVALID_PROVIDER",
	ErrInvalidDatabase:  "INVALID_DATABASE",
	ErrInvalidBackend:   "INVALID_BACKEND",
	ErrInvalidConfig:    "INVALID_CONFIG",
	ErrInvalidToken:     "INVALID_TOKEN",
	ErrFromTransport:    "FROM_TRANSPORT",
	ErrOpUnsupported:    "OP_UNSUPPORTED",
	ErrOpForbidden:      "OP_FORBIDDEN",
	ErrKeyNotFound:      "KEY_NOT_FOUND",
	ErrBufferSize:       "BUFFER_SIZE",
	ErrKeyExists:        "KEY_EXISTS",
	ErrCorruption:       "CORRUPTION",
	ErrIO:               "IO",
	ErrIncomplete:       "INCOMPLETE",
	ErrTimeout:          "TIMEOUT",
	ErrAborted:          "ABORTED",
	ErrBusy:             "BUSY",
	ErrExpired:          "EXPIRED",
	ErrTryAgain:         "TRY_AGAIN",
	ErrOther:            "OTHER",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// Error is the structural, out-of-band error type returned by backend and
// provider operations. It always wraps a Code so callers (and RPC
// handlers translating to a wire response) can branch on it without
// string matching.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// NewError creates an *Error with the given code and formatted message.
func NewError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}
