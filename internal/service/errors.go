package service

import "net/http"

// Error is a service-level failure the handler layer maps directly onto the
// response: the status picks the HTTP code, the message is safe to show the
// caller. Anything else bubbling out of a service is treated as unhandled
// and surfaces as a generic 500.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFoundError(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func ConflictError(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

func BadRequestError(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}
