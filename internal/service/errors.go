package service

import (
	"errors"
	"fmt"

	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/repository"
)

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrInvalidCredential = errors.New("invalid access token")
	ErrCredentialExpired = errors.New("JWT expired")
	ErrIdentityMismatch  = errors.New("x-user-id does not match the access token")
	ErrForbidden         = errors.New("forbidden")

	ErrEventNotFound          = repository.ErrEventNotFound
	ErrEventCodeExists        = repository.ErrEventCodeExists
	ErrRunNotFound            = repository.ErrRunNotFound
	ErrResultAlreadySubmitted = errors.New("result already submitted for this run")

	ErrEventNotJoinable     = errors.New("event is not open for new runs")
	ErrResultNotAccepted    = errors.New("event is not accepting results")
	ErrAdminLinkUnavailable = errors.New("admin link is only available while event is active/live")
	ErrInvalidTransition    = domain.ErrInvalidTransition
	ErrInvalidAction        = domain.ErrInvalidAction
	ErrInvalidState         = domain.ErrInvalidState
	ErrTransitionContention = errors.New("event changed concurrently, retry")

	ErrTokenInvalid       = errors.New("invalid admin token")
	ErrTokenExpired       = errors.New("admin token expired")
	ErrTokenEventMismatch = errors.New("admin token does not match event code")
)

// StateError is returned when an operation is refused because of an event's current state.
type StateError struct {
	Err   error
	State domain.EventState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s (current: %s)", e.Err, e.State)
}

func (e *StateError) Unwrap() error {
	return e.Err
}
