package services

import "fmt"

// ValidationError reports malformed or mismatched caller input, such as
// a phone number that does not belong to the selected provider.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports an unknown reference code or course.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// ConflictError reports an operation attempted against a transaction
// that is not in the required status, or a duplicate enrollment.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ProviderUnavailableError reports a missing or inactive provider.
type ProviderUnavailableError struct {
	Provider string
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("provider %s not available", e.Provider)
}

// DispatchError reports a notification channel failure. It is swallowed
// at the transaction-creation boundary and never fails the parent
// operation.
type DispatchError struct {
	Cause error
}

func (e *DispatchError) Error() string { return "notification dispatch failed: " + e.Cause.Error() }

func (e *DispatchError) Unwrap() error { return e.Cause }

// ExternalFormatError reports an unparseable inbound webhook payload.
type ExternalFormatError struct {
	Message string
}

func (e *ExternalFormatError) Error() string { return e.Message }
