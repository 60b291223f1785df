package exceptions

import (
	"errors"
	"fmt"
	"medledger-service/internal/pkg/constvars"
)

// ValidationReason discriminates why a payment was rejected before any state
// change. The record is untouched whenever one of these is returned.
type ValidationReason string

const (
	InvalidAmount        ValidationReason = "invalid_amount"
	ExceedsDue           ValidationReason = "exceeds_due"
	MissingRequiredField ValidationReason = "missing_required_field"
)

type ValidationError struct {
	Reason ValidationReason
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("ledger validation failed (%s): %s %s", e.Reason, e.Field, e.Detail)
	}
	return fmt.Sprintf("ledger validation failed (%s): %s", e.Reason, e.Detail)
}

func NewValidationError(reason ValidationReason, field, detail string) *ValidationError {
	return &ValidationError{Reason: reason, Field: field, Detail: detail}
}

// SyncReason discriminates remote confirmation failures. The record stays
// fully present locally with syncState=failed for every one of these.
type SyncReason string

const (
	SyncTimeout            SyncReason = "timeout"
	SyncRemoteRejected     SyncReason = "remote_rejected"
	SyncNetworkUnavailable SyncReason = "network_unavailable"
)

type SyncError struct {
	Reason SyncReason
	Err    error
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote sync failed (%s): %s", e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("remote sync failed (%s)", e.Reason)
}

func (e *SyncError) Unwrap() error { return e.Err }

func NewSyncError(reason SyncReason, err error) *SyncError {
	return &SyncError{Reason: reason, Err: err}
}

// AsCustomError maps a domain error onto the HTTP error shape used at the
// delivery boundary.
func AsCustomError(err error) *CustomError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		clientMessage := constvars.ErrClientCannotProcessRequest
		switch validationErr.Reason {
		case InvalidAmount:
			clientMessage = constvars.ErrClientInvalidPaymentAmount
		case ExceedsDue:
			clientMessage = constvars.ErrClientPaymentExceedsDue
		case MissingRequiredField:
			clientMessage = constvars.ErrClientMissingPaymentFields
		}
		return BuildNewCustomError(nil, constvars.StatusUnprocessableEntity, clientMessage, validationErr.Error())
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	return ErrServerProcess(err)
}
