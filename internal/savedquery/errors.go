package savedquery

import (
	"errors"
	"fmt"
)

// Error codes carried by ParseError and ValidationError.
const (
	ErrCodeParseFailed   = "PARSE_FAILED"
	ErrCodeDuplicateName = "DUPLICATE_NAME"
	ErrCodeInvalidSchema = "INVALID_SCHEMA"
	ErrCodeInvalidParams = "INVALID_PARAMS"
)

// ParseError reports a template file that could not be turned into a
// Definition. The loader skips the file and keeps going.
type ParseError struct {
	Code string
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports request parameters rejected by a query's schema.
type ValidationError struct {
	Key Key
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: parameters for %s: %v", ErrCodeInvalidParams, e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
