package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries an HTTP status alongside a user-facing message. Handlers
// return plain errors; the http service unwraps AppError to pick the status.
type AppError struct {
	StatusCode int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Err        error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, message string, err error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Err: err}
}

func ErrNotFound(what string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("%s not found", what)}
}

func ErrBadRequest(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

func ErrValidation(data interface{}) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: "Validation failed", Data: data}
}

func ErrUpstream(message string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadGateway, Message: message, Err: err}
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
