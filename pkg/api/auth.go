package api

// Значения поля status в ответах
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusResponse общий конверт ответа
type StatusResponse struct {
	Status  string `json:"status"`  // success или error
	Message string `json:"message"` // сообщение для пользователя
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse = StatusResponse

// User публичный профиль пользователя
type User struct {
	ID       string `json:"id"`       // UUID пользователя
	Username string `json:"username"` // username
	Email    string `json:"email"`    // email в нижнем регистре
}

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse ответ на регистрацию и вход
// Refresh token приходит отдельно, в HttpOnly cookie
type AuthResponse struct {
	StatusResponse
	User  User   `json:"user"`
	Token string `json:"token"` // JWT access token
}

// VerifyResponse ответ на проверку access token
type VerifyResponse struct {
	StatusResponse
	User User `json:"user"`
}

// RefreshResponse ответ с новым access token
type RefreshResponse struct {
	StatusResponse
	Token string `json:"token"`
}

// ForgotPasswordRequest запрос на сброс пароля
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse ответ на запрос сброса
// ResetToken заполняется только вне production
type ForgotPasswordResponse struct {
	StatusResponse
	ResetToken string `json:"resetToken,omitempty"`
}

// ResetPasswordRequest установка нового пароля по reset token
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
