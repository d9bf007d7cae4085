package lib

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrInvalidSignature = errors.New("invalid filter signature")

// UnknownFilterError is returned when a filter name is not registered.
type UnknownFilterError struct {
	Name string
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("filter '%s' does not exist", e.Name)
}

// CapabilityMismatchError is returned when a value lacks the capability a
// filter, or the output writer, requires. Filter is empty for the latter.
type CapabilityMismatchError struct {
	Filter   string
	Type     string
	Required Capability
	Actual   Capability
}

func (e *CapabilityMismatchError) Error() string {
	if e.Filter == "" {
		return fmt.Sprintf("value of type %s is not %s (capabilities: %s)", e.Type, e.Required.Adjective(), e.Actual)
	}
	return fmt.Sprintf("filter '%s' requires a %s value, got %s (capabilities: %s)", e.Filter, e.Required, e.Type, e.Actual)
}

type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

func mismatch(filter string, v *Value, required Capability) error {
	return &CapabilityMismatchError{
		Filter:   filter,
		Type:     v.TypeName(),
		Required: required,
		Actual:   v.Capabilities(),
	}
}
