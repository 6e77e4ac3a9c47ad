package tablegrid

import (
	"errors"
	"fmt"
)

// ErrorCode classifies engine errors
type ErrorCode uint8

const (
	ErrorCodeParse               ErrorCode = 1 // selector text does not match the address syntax
	ErrorCodeReference           ErrorCode = 2 // a fragment addresses a cell that does not exist
	ErrorCodeUnsupportedSelector ErrorCode = 3 // a range selector where only a basic one is valid
	ErrorCodeEvaluation          ErrorCode = 4 // a fragment or formula could not be evaluated
	ErrorCodeCycle               ErrorCode = 5 // cells reference each other circularly
	ErrorCodeInvalidArgument     ErrorCode = 6 // bad options or registrations
)

// ErrorMapper maps error codes to short names used in messages
var ErrorMapper = map[ErrorCode]string{
	ErrorCodeParse:               "parse error",
	ErrorCodeReference:           "reference error",
	ErrorCodeUnsupportedSelector: "unsupported selector",
	ErrorCodeEvaluation:          "evaluation error",
	ErrorCodeCycle:               "reference cycle",
	ErrorCodeInvalidArgument:     "invalid argument",
}

// GridError is the error type returned by every engine operation
type GridError struct {
	Code    ErrorCode
	Message string
	Address *Address // cell being interpreted, when known
	Err     error
}

func (e *GridError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = ErrorMapper[e.Code]
	}
	if e.Address != nil {
		msg = fmt.Sprintf("cell %s: %s", e.Address, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GridError) Unwrap() error {
	return e.Err
}

// Is matches any *GridError carrying the same code, so the sentinels below
// work with errors.Is
func (e *GridError) Is(target error) bool {
	var t *GridError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewGridError creates a new error with the given code
func NewGridError(code ErrorCode, message string) *GridError {
	return &GridError{Code: code, Message: message}
}

// at returns a copy of the error bound to a cell address. an address that
// is already set wins.
func (e *GridError) at(addr Address) *GridError {
	if e.Address != nil {
		return e
	}
	cp := *e
	cp.Address = &addr
	return &cp
}

var (
	ErrParse               = &GridError{Code: ErrorCodeParse}
	ErrReference           = &GridError{Code: ErrorCodeReference}
	ErrUnsupportedSelector = &GridError{Code: ErrorCodeUnsupportedSelector}
	ErrEvaluation          = &GridError{Code: ErrorCodeEvaluation}
	ErrReferenceCycle      = &GridError{Code: ErrorCodeCycle}
	ErrInvalidArgument     = &GridError{Code: ErrorCodeInvalidArgument}
)

// bindAddress attaches addr to err when err is a *GridError
func bindAddress(err error, addr Address) error {
	var ge *GridError
	if errors.As(err, &ge) {
		return ge.at(addr)
	}
	return &GridError{Code: ErrorCodeEvaluation, Address: &addr, Err: err}
}
