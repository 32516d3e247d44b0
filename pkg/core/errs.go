package core

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// InsufficientDataError reports a series shorter than a consumer requires
type InsufficientDataError struct {
	Symbol   string
	Required int
	Got      int
}

func (e *InsufficientDataError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s: need %d bars, got %d", ErrInsufficientData, e.Required, e.Got)
	}
	return fmt.Sprintf("%s for %s: need %d bars, got %d", ErrInsufficientData, e.Symbol, e.Required, e.Got)
}

// Is makes errors.Is(err, ErrInsufficientData) match
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// InvalidParameterError reports a rejected run parameter
type InvalidParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s %s=%v: %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidParameter) match
func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// NewInvalidParameter is a shorthand for building an InvalidParameterError
func NewInvalidParameter(name string, value any, reason string) error {
	return &InvalidParameterError{Name: name, Value: value, Reason: reason}
}
