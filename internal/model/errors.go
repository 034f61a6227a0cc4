package model

import (
	"errors"
	"fmt"
)

// ValidationError reports a required input that was not supplied or is out of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("validation: %s is required", e.Field)
	}
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// MissingField returns a ValidationError for an absent field.
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field}
}

// TypeMismatchError reports a value that is present but of the wrong kind.
type TypeMismatchError struct {
	Field string
	Want  string
	Got   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %s must be %s, got %s", e.Field, e.Want, e.Got)
}

// ResourceError reports a geometry layer that cannot be located, read or
// reprojected.
type ResourceError struct {
	Ref string
	Err error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resource: layer %q unavailable", e.Ref)
	}
	return fmt.Sprintf("resource: layer %q: %v", e.Ref, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// IsValidation returns true if err (or any error in its chain) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTypeMismatch returns true if err (or any error in its chain) is a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	var te *TypeMismatchError
	return errors.As(err, &te)
}

// IsResource returns true if err (or any error in its chain) is a ResourceError.
func IsResource(err error) bool {
	var re *ResourceError
	return errors.As(err, &re)
}
