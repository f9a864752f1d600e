package statuserr

import (
	"fmt"
)

// Error is the common error type of TgBotStatus.
//
// Use errors.Is or errors.Unwrap to inspect what kind of error it is.
type Error struct {
	kind    error
	from    error
	message string
}

// New creates a new Error of the given kind, optionally wrapping another error.
func New(kind error, from error, format string, args ...interface{}) Error {
	msg := fmt.Sprintf(format, args...)
	if from != nil {
		if msg != "" {
			msg += ": "
		}
		msg += from.Error()
	}

	return Error{
		kind:    kind,
		from:    from,
		message: msg,
	}
}

// Error implements error interface.
func (e Error) Error() string {
	return e.message
}

// Unwrap implement for errors.Unwrap.
func (e Error) Unwrap() error {
	return e.from
}

// Is implement for errors.Is.
func (e Error) Is(err error) bool {
	return e.kind == err
}
