package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dibarradev/to-do/internal/server/apperr"
	"github.com/dibarradev/to-do/pkg/api"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

// msgInvalidBody ответ на нечитаемый JSON
const msgInvalidBody = "invalid request body"

// WriteJSON отправляет JSON ответ
func WriteJSON(w http.ResponseWriter, logger *slog.Logger, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// WriteErrorMessage отправляет конверт ошибки с заданным статусом
func WriteErrorMessage(w http.ResponseWriter, logger *slog.Logger, message string, status int) {
	WriteJSON(w, logger, api.ErrorResponse{Status: api.StatusError, Message: message}, status)
}

// writeError переводит ошибку сервиса в HTTP ответ
// Внутренние ошибки логируются, клиент видит общее сообщение
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	ctx := r.Context()

	var appErr *apperr.Error
	switch {
	case status >= http.StatusInternalServerError:
		logger.ErrorContext(ctx, "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	case errors.As(err, &appErr):
		logger.DebugContext(ctx, "request rejected",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err))
	}

	WriteErrorMessage(w, logger, apperr.PublicMessage(err), status)
}

// decodeJSON читает тело запроса в dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation(msgInvalidBody).WithCause(err)
	}
	return nil
}
