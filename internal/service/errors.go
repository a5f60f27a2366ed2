// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrEmailExists        = errors.New("email already exists")
	ErrPlanetExists       = errors.New("planet name already exists")
	ErrPlanetNotFound     = errors.New("planet not found")
	ErrInvalidCredentials = errors.New("bad email or password")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidNumber      = errors.New("invalid number")
)

// FieldError ties an input error to the field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func missing(field string) error {
	return &FieldError{Field: field, Err: ErrMissingField}
}

func invalidNumber(field string) error {
	return &FieldError{Field: field, Err: ErrInvalidNumber}
}
