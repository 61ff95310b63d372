package util

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a parameter has the wrong type or shape.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError describes a parameter that was rejected.
type ArgumentError struct {
	// Param is the parameter name as callers know it (e.g. "utf8").
	Param string
	// Expected names the type the parameter should have had.
	Expected string
	// Reason is set instead of Expected when the type was right but the value was not.
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Parameter %q is invalid: %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("Parameter %q is not of type %s", e.Param, e.Expected)
}

// Is implements errors.Is for sentinel error matching.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
