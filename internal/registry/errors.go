package registry

import (
	"errors"
	"fmt"

	"github.com/roach88/resql/internal/savedquery"
)

// Error codes.
const (
	ErrCodeConfigInvalid = "CONFIG_INVALID"
	ErrCodeNotFound      = "NOT_FOUND"
)

// ConfigurationError reports an unusable saved queries directory.
// It is fatal at startup: no registry is returned alongside it.
type ConfigurationError struct {
	Path    string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrCodeConfigInvalid, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrCodeConfigInvalid, msg)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned by Lookup for any miss, whether the project,
// the method or the name is unknown.
type NotFoundError struct {
	Project string
	Method  savedquery.Method
	Name    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("saved query '%s' does not exist", e.Name)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
