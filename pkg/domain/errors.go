package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrItemNotOnPage is returned when an edit targets a row that is not on the rendered page.
var ErrItemNotOnPage = errors.New("item is not on the current page")

// ErrPageOutOfRange is returned when page navigation would leave [1, totalPages].
var ErrPageOutOfRange = errors.New("page out of range")

// ErrStaleResponse is returned when a catalog response arrives after a newer request was issued.
var ErrStaleResponse = errors.New("stale catalog response discarded")

// ErrNotFinalStep is returned when Submit is invoked outside of the last step.
var ErrNotFinalStep = errors.New("submit is only permitted from the final step")

// ErrSubmitInProgress is returned when Submit is invoked while a submission is in flight.
var ErrSubmitInProgress = errors.New("submission already in progress")

// ErrValidationFailed is returned by Submit when the final step does not validate.
var ErrValidationFailed = errors.New("validation failed")

// ServiceError is a failure reported by an external service together with a
// message meant for the operator.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service error (status %d)", e.StatusCode)
	}
	return e.Message
}
