// Package util provides logging, common error types and small address helpers.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnknownNode      = errors.New("unknown node")
	ErrDuplicateName    = errors.New("duplicate node name")
	ErrDuplicateDPID    = errors.New("duplicate datapath id")
	ErrNotInjected      = errors.New("node not injected")
	ErrNoAttachment     = errors.New("host has no attachment interface")
	ErrNotAttachable    = errors.New("switch does not support interface attachment")
)

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// DuplicateNameError reports a node name declared by more than one domain.
type DuplicateNameError struct {
	Name    string
	Domains []int
}

func (e *DuplicateNameError) Error() string {
	ids := make([]string, len(e.Domains))
	for i, d := range e.Domains {
		ids[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("node %q declared in domains %s", e.Name, strings.Join(ids, ", "))
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// DuplicateDPIDError reports switches of different domains that would
// share a datapath id, and so a device id.
type DuplicateDPIDError struct {
	DPID     string
	Switches []string
	Domains  []int
}

func (e *DuplicateDPIDError) Error() string {
	owners := make([]string, len(e.Switches))
	for i, sw := range e.Switches {
		owners[i] = fmt.Sprintf("%s (domain %d)", sw, e.Domains[i])
	}
	return fmt.Sprintf("datapath id %s shared by %s", e.DPID, strings.Join(owners, ", "))
}

func (e *DuplicateDPIDError) Unwrap() error {
	return ErrDuplicateDPID
}
