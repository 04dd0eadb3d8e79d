// Package apperr описывает ошибки, которые видит клиент API.
//
// Сервисный слой возвращает *Error с одним из Kind, handler переводит его в
// HTTP статус. Любая другая ошибка считается внутренней: клиент получает
// общее сообщение, детали остаются в логе.
package apperr

import (
	"errors"
	"net/http"
)

// Kind ошибок
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// InternalMessage сообщение клиенту для непредвиденных ошибок
const InternalMessage = "internal server error"

// Error доменная ошибка с безопасным для клиента сообщением
type Error struct {
	kind    error
	cause   error
	Message string
}

// Error реализует error
func (e *Error) Error() string {
	if e.cause != nil {
		return e.kind.Error() + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.kind.Error() + ": " + e.Message
}

// Unwrap позволяет errors.Is находить и Kind, и причину
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Validation некорректный или отсутствующий ввод (400)
func Validation(msg string) *Error {
	return &Error{kind: ErrValidation, Message: msg}
}

// Conflict дубликат username/email (400)
func Conflict(msg string) *Error {
	return &Error{kind: ErrConflict, Message: msg}
}

// Unauthorized неверные учетные данные или токен (401)
func Unauthorized(msg string) *Error {
	return &Error{kind: ErrUnauthorized, Message: msg}
}

// NotFound ресурс отсутствует (404)
func NotFound(msg string) *Error {
	return &Error{kind: ErrNotFound, Message: msg}
}

// WithCause прикрепляет причину для логов, сообщение клиенту не меняется
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// HTTPStatus переводит ошибку в HTTP статус
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage сообщение, которое можно показать клиенту
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return InternalMessage
}
