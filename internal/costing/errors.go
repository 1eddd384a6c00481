package costing

import (
	"errors"
	"fmt"
)

// ErrCircularReference is returned when adding a recipe line item would make
// a recipe reachable from itself.
var ErrCircularReference = errors.New("costing: circular recipe reference")

// InvalidInputError reports malformed numeric input at ingredient or recipe
// creation/edit time. Operations failing with it must be rejected before any
// persistence attempt.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// InvalidInput builds an InvalidInputError with a formatted message.
func InvalidInput(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
