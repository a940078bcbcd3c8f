// Package apperror defines the failures that services hand back to the HTTP layer.
// Each carries a status code, a short message and an optional list of details.
package apperror

import (
	"errors"
	"net/http"
	"strings"
)

type Error struct {
	Status  int
	Message string
	Errors  []string
}

func New(status int, message string, errs ...string) *Error {
	return &Error{Status: status, Message: message, Errors: errs}
}

func NotFound(errs ...string) *Error {
	return New(http.StatusNotFound, "Not Found", errs...)
}

func BadRequest(errs ...string) *Error {
	return New(http.StatusBadRequest, "Bad Request", errs...)
}

// Validation is used for malformed input caught before it reaches a service.
func Validation(errs ...string) *Error {
	return New(http.StatusBadRequest, "Validation Failed", errs...)
}

func Unauthorized(errs ...string) *Error {
	return New(http.StatusUnauthorized, "Unauthorized", errs...)
}

func Forbidden(errs ...string) *Error {
	return New(http.StatusForbidden, "Forbidden", errs...)
}

func Internal() *Error {
	return New(http.StatusInternalServerError, "Internal Server Error")
}

func (e *Error) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Errors, "; ")
}

type Response struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func (e *Error) Response() Response {
	errs := e.Errors
	if errs == nil {
		errs = []string{}
	}
	return Response{Message: e.Message, Errors: errs}
}

// From returns the *Error in err's chain, or nil.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
