package tlv

import (
	"errors"
	"fmt"
)

// Malformed-input errors. They are always returned wrapped in a *ParseError
// carrying the offset at which the problem was found.
var (
	ErrIncompleteTag    = errors.New("incomplete tag")
	ErrIncompleteLength = errors.New("incomplete length")
	ErrIndefiniteLength = errors.New("indefinite length is not supported")
	ErrIncompleteValue  = errors.New("incomplete value")
	ErrLengthTooLong    = errors.New("length field too long")
	ErrInvalidHex       = errors.New("invalid hex character")
	ErrOddLength        = errors.New("odd number of hex digits")
)

var (
	// ErrValueTooLong is returned by the encoder when a value needs more than
	// two length bytes (65535 bytes max).
	ErrValueTooLong = errors.New("value too long to encode")
	ErrInvalidTag   = errors.New("invalid tag")
)

// ParseError reports where decoding stopped.
// For hex input errors, Offset is the character position in the original string.
type ParseError struct {
	Offset int
	Err    error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("offset %d: %v (%s)", e.Offset, e.Err, e.Detail)
	}
	return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
