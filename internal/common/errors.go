// Package common defines sentinel errors and typed domain errors shared by
// the storage, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal       = errors.New("internal error")
	ErrorValidation     = errors.New("validation error")
	ErrorDuplicateEmail = errors.New("duplicate email")
	ErrorInvalidInput   = errors.New("invalid input")

	// Workshop catalogue errors.
	ErrorDataLoad = errors.New("data load error")
)

// ValidationError reports the first field of a payload that failed its rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrorValidation
}

// DuplicateEmailError names the address that is already registered.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("Email '%s' already exists.", e.Email)
}

func (e *DuplicateEmailError) Unwrap() error {
	return ErrorDuplicateEmail
}

// DataLoadError wraps any failure to read or interpret workshop data.
type DataLoadError struct {
	Err error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("workshop data: %v", e.Err)
}

// Is lets errors.Is(err, ErrorDataLoad) match while Unwrap still exposes the cause.
func (e *DataLoadError) Is(target error) bool {
	return target == ErrorDataLoad
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}
