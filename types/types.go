// Package types implements the process-wide Type Registry: the set of
// DataType descriptors used to validate port values and check edge
// compatibility across the graph.
package types

import "fmt"

// DataType describes a value that can flow across a port. Descriptors are
// registered once, by name, and are read-only for the remainder of the
// process.
type DataType interface {
	// Name returns the unique, stable identifier for this type.
	Name() string

	// Validate reports whether value is a legal instance of this type.
	Validate(value any) bool

	// Convert attempts to coerce value into this type, returning a
	// ConversionError on failure.
	Convert(value any) (any, error)

	// CompatibleWith reports whether a value of this type may flow into a
	// port declared with the other type.
	CompatibleWith(other DataType) bool
}

// ConversionError is returned by Convert when a value cannot be coerced
// into the target type.
type ConversionError struct {
	TargetType string
	SourceType string
	Reason     string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s: %s", e.SourceType, e.TargetType, e.Reason)
}

// NotFoundError is returned by Registry.Get (and so by ValidateValue and
// ConvertValue) when a type name has never been registered.
type NotFoundError struct {
	TypeName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("data type %q not registered", e.TypeName)
}

// DuplicateError is returned by Registry.Register when a different
// descriptor is already registered under the same name.
type DuplicateError struct {
	TypeName string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("data type %q already registered with a different descriptor", e.TypeName)
}

func typeNameOf(value any) string {
	return fmt.Sprintf("%T", value)
}
