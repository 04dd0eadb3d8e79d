package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dibarradev/to-do/internal/server/handlers"
	"github.com/dibarradev/to-do/internal/server/token"
)

// Ответы auth middleware
const (
	MsgMissingToken       = "missing token"
	MsgInvalidTokenFormat = "invalid token format"
	MsgTokenExpired       = "token expired"
	MsgInvalidToken       = "invalid token"
)

// AccessVerifier проверяет access token
type AccessVerifier interface {
	VerifyAccess(raw string) (*token.AccessClaims, error)
}

// AuthMiddleware создает middleware для проверки JWT токена
// Identity из токена кладется в контекст запроса
func AuthMiddleware(logger *slog.Logger, verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.DebugContext(ctx, "missing Authorization header", slog.String("path", r.URL.Path))
				handlers.WriteErrorMessage(w, logger, MsgMissingToken, http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, raw, ok := strings.Cut(authHeader, " ")
			raw = strings.TrimSpace(raw)
			if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
				logger.WarnContext(ctx, "invalid Authorization header format")
				handlers.WriteErrorMessage(w, logger, MsgInvalidTokenFormat, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.VerifyAccess(raw)
			if err != nil {
				msg := MsgInvalidToken
				if errors.Is(err, token.ErrTokenExpired) {
					msg = MsgTokenExpired
				}
				logger.WarnContext(ctx, "access token rejected", slog.Any("error", err))
				handlers.WriteErrorMessage(w, logger, msg, http.StatusUnauthorized)
				return
			}

			ctx = handlers.WithIdentity(ctx, handlers.Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
				Email:    claims.Email,
			})

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", claims.UserID))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
