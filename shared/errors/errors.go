package errors

import (
	"errors"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func New(message string, statusCode int) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: statusCode}
}

func NotFound(message string) *ErrorWithStatusCode {
	return New(message, http.StatusNotFound)
}

func BadRequest(message string) *ErrorWithStatusCode {
	return New(message, http.StatusBadRequest)
}

// StatusCode returns the status carried by err, 500 for plain errors.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return err != nil && StatusCode(err) == http.StatusNotFound
}
