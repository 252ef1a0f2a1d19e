package compose

import "errors"

// Composition errors. Returned from Compose, Create, Apply and Delegate; the
// composition is abandoned and no partial type is returned.
var (
	ErrInvalidArgument         = errors.New("compose arguments must be functions or objects")
	ErrSourceMethodUnavailable = errors.New("source method was not available to be renamed")
)

// Call errors. Returned when a method is invoked; only that call fails.
var (
	ErrDecoratorNotApplied   = errors.New("decorator not applied")
	ErrRequiredUnimplemented = errors.New("this method is required and no implementation has been provided")
	ErrConflictedMethod      = errors.New("conflicted method, final composer must explicitly override with correct method")
	ErrMethodNotFound        = errors.New("method not found")
	ErrNotCallable           = errors.New("property is not callable")
)

// Property errors.
var (
	ErrReadOnly = errors.New("property is read-only")
)
