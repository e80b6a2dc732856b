package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPermission   = errors.New("not permitted")
	ErrValidation   = errors.New("validation failed")
	ErrBlockedDonor = errors.New("donor is blocked")
	ErrDuplicate    = errors.New("duplicate")
	ErrLinked       = errors.New("linked with other documents")
)

// ValidationError reports a user-facing problem with a single input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// BlockedDonorError names the payment row whose donor is blocked.
type BlockedDonorError struct {
	Row   int
	Donor string
}

func (e *BlockedDonorError) Error() string {
	return fmt.Sprintf("row %d: donor %s: %s", e.Row, e.Donor, ErrBlockedDonor)
}

func (e *BlockedDonorError) Is(target error) bool {
	return target == ErrBlockedDonor
}

// NotFoundError names the document that does not exist.
type NotFoundError struct {
	Doctype string
	Name    string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return e.Doctype + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Doctype, e.Name)
}

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError.
func NotFound(doctype, name string) error {
	return &NotFoundError{Doctype: doctype, Name: name}
}
