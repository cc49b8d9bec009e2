package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a Failure independently of its HTTP code.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindBusy             Kind = "busy"
	KindAlreadyBooked    Kind = "already_booked"
	KindConflict         Kind = "conflict"
	KindNotFound         Kind = "not_found"
	KindInvalidState     Kind = "invalid_state"
	KindExpired          Kind = "expired"
	KindRefundNotAllowed Kind = "refund_not_allowed"
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindInternal         Kind = "internal"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	State   string `json:"state,omitempty"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Kind: KindForbidden, Message: "You don't have the required permissions"}
var ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Kind: KindForbidden, Message: "You don't have permission to access this resource"}

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

// Retryable reports whether the same request may succeed if simply repeated.
func (e *Failure) Retryable() bool {
	return e.Kind == KindBusy
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Kind:    KindValidation,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Kind:    KindUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Kind:    KindInternal,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure for an interval that collides with another booking.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// AlreadyBooked returns a new Failure for a create that lost the race for an interval.
func AlreadyBooked(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindAlreadyBooked,
		Message: message,
	}
}

// Busy returns a retryable Failure used when a resource lock could not be acquired in time.
func Busy(message string) error {
	return &Failure{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindBusy,
		Message: message,
	}
}

// InvalidState returns a new Failure for an illegal transition, carrying the current state.
func InvalidState(current string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("operation not allowed in state %s", current),
		State:   current,
	}
}

// Expired returns a new Failure for operations on a hold that already lapsed.
func Expired(message string) error {
	return &Failure{
		Code:    http.StatusGone,
		Kind:    KindExpired,
		Message: message,
		State:   "expired",
	}
}

// RefundNotAllowed returns a new Failure when the refund policy rejects a refund.
func RefundNotAllowed(reason string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindRefundNotAllowed,
		Message: reason,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Kind:    KindForbidden,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the kind of an error interface, KindInternal for foreign errors.
func GetKind(err error) Kind {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Kind
	}

	return KindInternal
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && GetKind(err) == kind
}

// IsRetryable reports whether err is a Failure that may succeed when repeated.
func IsRetryable(err error) bool {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Retryable()
	}

	return false
}
