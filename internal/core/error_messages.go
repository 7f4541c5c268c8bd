// Package core provides the business logic for the personal trainer dashboard.
//
// # Error Codes Reference
//
// Technical errors are logged together with a short code so a support
// request can be matched to the log line. Screens never show the code;
// they show the per-operation banner from the entity kind's Messages.
//
// # Backend Errors (API001-API099)
//
//	API001 - Request failed: the backend answered with a non-success status
//	API002 - Not found: the backend does not know the record (HTTP 404)
//	API003 - Backend unavailable: connection refused or reset
//	API004 - Timeout: the request did not complete in time
//
// # Record Errors (REC001-REC099)
//
//	REC001 - Missing locator: the record has no id or self link
//	REC002 - Owner not found: a training's customer could not be resolved
//	REC003 - Not in list: the record is not in the currently held list
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid input: one or more form fields failed validation
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Cancelled: the client went away
//	RATE001 - Too many requests
package core

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrRequestFailed wraps every transport failure and non-success status.
	ErrRequestFailed = errors.New("request failed")

	// ErrMissingLocator means an update or delete target has no identity.
	ErrMissingLocator = errors.New("missing record locator")

	// ErrOwnerNotFound means a training's customer could not be resolved.
	ErrOwnerNotFound = errors.New("owner customer not found")

	// ErrNotInList means the requested id is not in the held collection.
	ErrNotInList = errors.New("record not in current list")

	// ErrInvalidInput means form validation failed.
	ErrInvalidInput = errors.New("invalid input")
)

// StatusError is implemented by errors that carry an HTTP status.
type StatusError interface {
	StatusCode() int
}

// UserMessage is a user-facing description of an error.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrMissingLocator, UserMessage{
		Message: "The record has no identity",
		Action:  "Reload the list and try again",
		Code:    "REC001",
	}},
	{ErrOwnerNotFound, UserMessage{
		Message: "The customer for this training was not found",
		Action:  "Reload the customer list and pick another customer",
		Code:    "REC002",
	}},
	{ErrNotInList, UserMessage{
		Message: "The record is no longer in the list",
		Action:  "Reload the list; it may have been deleted",
		Code:    "REC003",
	}},
	{ErrInvalidInput, UserMessage{
		Message: "Some fields are invalid",
		Action:  "Correct the highlighted fields",
		Code:    "VAL001",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The backend is unavailable",
			Action:  "Please try again in a few moments",
			Code:    "API003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The backend connection was interrupted",
			Action:  "Please try again",
			Code:    "API003",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "The backend is unavailable",
			Action:  "Check BACKEND_BASE_URL",
			Code:    "API003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "API004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "API004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var requestFailedMessage = UserMessage{
	Message: "The backend request failed",
	Action:  "Please try again",
	Code:    "API001",
}

var notFoundMessage = UserMessage{
	Message: "The record was not found on the backend",
	Action:  "Reload the list; it may have been deleted",
	Code:    "API002",
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error into a user-facing message.
// Sentinel errors are matched first, then transport patterns, then the
// generic request failure.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if errors.Is(err, ErrRequestFailed) {
		var se StatusError
		if errors.As(err, &se) && se.StatusCode() == http.StatusNotFound {
			return notFoundMessage
		}
		return requestFailedMessage
	}

	return defaultMessage
}
