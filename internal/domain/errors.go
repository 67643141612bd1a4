package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoActiveRoom        = errors.New("no active room")
	ErrRoomVanished        = errors.New("room vanished")
	ErrInvalidTarget       = errors.New("invalid target")
	ErrOwnerStillPresent   = errors.New("owner still present")
	ErrValidationFailed    = errors.New("validation failed")
	ErrPlatformUnavailable = errors.New("platform unavailable")
	ErrSetupRequired       = errors.New("setup required")
	ErrAlreadySetup        = errors.New("already set up")
	ErrForbidden           = errors.New("forbidden")
)

// Error pairs one of the sentinel kinds with a human readable reason.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Fail(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Reason returns the reason attached with Fail, or "" if there is none.
func Reason(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}
