package mp4io

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTruncatedInput = errors.New("truncated input")
	ErrUnknownBoxType = errors.New("unknown box type")
	ErrInvalidUTF8    = errors.New("invalid utf-8 string")
	ErrUnmetCondition = errors.New("unmet field condition")
	ErrSizeMismatch   = errors.New("box size does not match its fields")
	ErrCountMismatch  = errors.New("array length does not match its count field")
	ErrInvalidSize    = errors.New("invalid box size")
)

// ParseError records where a parse or write failed. Frames are chained from
// the innermost field outwards to the enclosing boxes.
type ParseError struct {
	Debug  string
	Offset int
	Err    error
	prev   *ParseError
}

func (p *ParseError) Error() string {
	s := []string{}
	var cause error
	for err := p; err != nil; err = err.prev {
		s = append(s, fmt.Sprintf("%s:%d", err.Debug, err.Offset))
		if err.Err != nil {
			cause = err.Err
		}
	}
	msg := "mp4io: parse error: " + strings.Join(s, ",")
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return msg
}

func (p *ParseError) Unwrap() error {
	for err := p; err != nil; err = err.prev {
		if err.Err != nil {
			return err.Err
		}
	}
	return nil
}

// UnknownBoxError reports a tag that has no registered kind.
type UnknownBoxError struct {
	Tag Tag
}

func (e *UnknownBoxError) Error() string {
	return fmt.Sprintf("mp4io: unknown box type %q", e.Tag.String())
}

func (e *UnknownBoxError) Is(target error) bool {
	return target == ErrUnknownBoxType
}

// parseErr wraps prev with one more location frame. Errors that are not
// *ParseError become the cause of a new chain.
func parseErr(debug string, offset int, prev error) error {
	var pe *ParseError
	if errors.As(prev, &pe) {
		return &ParseError{Debug: debug, Offset: offset, prev: pe}
	}
	return &ParseError{Debug: debug, Offset: offset, Err: prev}
}
