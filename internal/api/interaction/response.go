package interaction

import (
	"errors"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
)

type Status int

const (
	StatusSuccess Status = iota
	StatusError
	StatusInfo
	StatusWarning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusInfo:
		return "info"
	case StatusWarning:
		return "warning"
	}
	return "unknown"
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Response is what the caller sees once an action resolves.
type Response struct {
	Status Status
	Title  string
	Body   string
	Fields []Field
}

func success(title, body string, fields ...Field) Response {
	return Response{Status: StatusSuccess, Title: title, Body: body, Fields: fields}
}

func info(title, body string) Response {
	return Response{Status: StatusInfo, Title: title, Body: body}
}

func warning(title, body string, fields ...Field) Response {
	return Response{Status: StatusWarning, Title: title, Body: body, Fields: fields}
}

func failure(title, body string) Response {
	return Response{Status: StatusError, Title: title, Body: body}
}

type PromptKind int

const (
	PromptModal PromptKind = iota
	PromptUserSelect
)

// Prompt asks the caller for the input of a two-step action. Its submission
// comes back with SubmitID as custom id.
type Prompt struct {
	Kind        PromptKind
	SubmitID    string
	Title       string
	Label       string
	Placeholder string
	MinLength   int
	MaxLength   int
}

// errorResponse maps an operation error to what the caller is told.
func errorResponse(err error) Response {
	reason := domain.Reason(err)
	pick := func(fallback string) string {
		if reason != "" {
			return reason
		}
		return fallback
	}

	switch {
	case errors.Is(err, domain.ErrNoActiveRoom):
		return failure("No active room", pick("You don't own an active temporary room. Join the creator channel to get one."))
	case errors.Is(err, domain.ErrRoomVanished):
		return failure("Room not found", "Your room no longer exists and its record has been cleared.")
	case errors.Is(err, domain.ErrInvalidTarget):
		return failure("Invalid user", pick("That user cannot be selected for this action."))
	case errors.Is(err, domain.ErrOwnerStillPresent):
		return failure("Owner still present", "The owner is still connected, so the room cannot be claimed.")
	case errors.Is(err, domain.ErrValidationFailed):
		return failure("Invalid input", pick("The value you entered is not valid."))
	case errors.Is(err, domain.ErrForbidden):
		return failure("Missing permission", pick("You are not allowed to do that."))
	case errors.Is(err, domain.ErrSetupRequired):
		return failure("Setup required", pick("Temporary rooms are not set up on this server."))
	case errors.Is(err, domain.ErrPlatformUnavailable):
		return failure("Discord is unavailable", "Discord did not answer in time. Please try again.")
	}
	return failure("Something went wrong", "The action could not be completed.")
}
