package encoding

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEnd        = errors.New("unexpected end of input")
	ErrInvalidTag           = errors.New("invalid tag")
	ErrMalformedInteger     = errors.New("malformed integer")
	ErrTruncatedString      = errors.New("truncated string")
	ErrInvalidDictionaryKey = errors.New("invalid dictionary key")
	ErrNestingTooDeep       = errors.New("nesting too deep")
	ErrTrailingData         = errors.New("trailing data after value")
)

// SyntaxError describes where and why decoding failed. Use errors.Is against the Err*
// sentinels to find the kind of failure.
type SyntaxError struct {
	Err    error
	Offset int
	Detail string
}

func (e *SyntaxError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("bencode: %v at offset %d", e.Err, e.Offset)
	}
	return fmt.Sprintf("bencode: %v at offset %d: %s", e.Err, e.Offset, e.Detail)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func syntaxErr(err error, offset int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		Err:    err,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}
