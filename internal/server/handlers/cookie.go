package handlers

import (
	"net/http"
	"time"
)

// Параметры cookie с refresh token
const (
	RefreshCookieName = "refreshToken"
	RefreshCookiePath = "/api/auth"
)

// CookieConfig настройки cookie с refresh token
type CookieConfig struct {
	MaxAge time.Duration
	Secure bool // true в production
}

// setRefreshCookie устанавливает HttpOnly cookie с refresh token
func (c CookieConfig) setRefreshCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     RefreshCookiePath,
		MaxAge:   int(c.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearRefreshCookie удаляет cookie у клиента
func (c CookieConfig) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// refreshCookieValue возвращает значение cookie или пустую строку
func refreshCookieValue(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
