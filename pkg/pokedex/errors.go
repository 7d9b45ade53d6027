package pokedex

import (
	"errors"
	"fmt"
)

// ErrorClass classifies a lookup failure.
type ErrorClass string

const (
	// ErrorClassInvalidContext is an unrecognized search mode.
	ErrorClassInvalidContext ErrorClass = "invalid_context"

	// ErrorClassEmptyInput is a blank search term, rejected before any request.
	ErrorClassEmptyInput ErrorClass = "empty_input"

	// ErrorClassNotFound is any non-success upstream status.
	ErrorClassNotFound ErrorClass = "not_found"

	// ErrorClassNetwork means no response was received.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassMalformedResponse is a body that does not parse as expected.
	ErrorClassMalformedResponse ErrorClass = "malformed_response"

	// ErrorClassEmptyResultSet is a type or ability lookup with no members.
	ErrorClassEmptyResultSet ErrorClass = "empty_result_set"
)

// Sentinels matched by errors.Is against any *Error of the same class.
var (
	ErrInvalidContext    = errors.New("invalid search context")
	ErrEmptyInput        = errors.New("empty search term")
	ErrNotFound          = errors.New("not found")
	ErrNetwork           = errors.New("network error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrEmptyResultSet    = errors.New("empty result set")
)

var sentinels = map[ErrorClass]error{
	ErrorClassInvalidContext:    ErrInvalidContext,
	ErrorClassEmptyInput:        ErrEmptyInput,
	ErrorClassNotFound:          ErrNotFound,
	ErrorClassNetwork:           ErrNetwork,
	ErrorClassMalformedResponse: ErrMalformedResponse,
	ErrorClassEmptyResultSet:    ErrEmptyResultSet,
}

var messages = map[ErrorClass]string{
	ErrorClassInvalidContext:    "Invalid search context",
	ErrorClassEmptyInput:        "Please enter a value",
	ErrorClassNotFound:          "No results found",
	ErrorClassNetwork:           "The Pokédex service could not be reached",
	ErrorClassMalformedResponse: "The Pokédex service returned an unreadable response",
	ErrorClassEmptyResultSet:    "No Pokémon found for that search",
}

// Error is the single error type surfaced by a lookup.
type Error struct {
	Class      ErrorClass
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// NewError builds an Error with the default user message for its class.
func NewError(class ErrorClass, url string, status int, cause error) *Error {
	return &Error{
		Class:      class,
		URL:        url,
		StatusCode: status,
		Message:    messages[class],
		Err:        cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("pokedex %s error", e.Class)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.URL != "" {
		msg += " " + e.URL
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the class sentinel.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Class]
	return ok && s == target
}

// ClassOf returns the class of err, or "" when err is not an *Error.
func ClassOf(err error) ErrorClass {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}

// UserMessage returns the message shown to the user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong"
}
