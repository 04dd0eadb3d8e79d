package api

import (
	"errors"
	"fmt"
	"net/http"
)

// msgTokenExpired сообщение сервера об истекшем access токене
const msgTokenExpired = "token expired"

// ErrNoRefreshCookie сервер не вернул refresh cookie после входа
var ErrNoRefreshCookie = errors.New("refresh cookie missing in response")

// APIError ошибка, которую вернул сервер в формате {"status":"error","message":...}
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsTokenExpired сообщает, что запрос отклонен из-за истекшего access токена
func IsTokenExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusUnauthorized &&
		apiErr.Message == msgTokenExpired
}

// IsUnauthorized сообщает о любом ответе 401
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
