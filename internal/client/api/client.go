package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dibarradev/to-do/pkg/api"
)

// refreshCookieName имя HttpOnly cookie с refresh токеном
const refreshCookieName = "refreshToken"

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Session результат регистрации или входа
type Session struct {
	User         api.User
	AccessToken  string
	RefreshToken string
}

// callOptions учетные данные конкретного запроса
type callOptions struct {
	accessToken  string
	refreshToken string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// BaseURL адрес сервера
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*Session, error) {
	session, err := c.startSession(ctx, "/api/auth/register", req)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return session, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*Session, error) {
	session, err := c.startSession(ctx, "/api/auth/login", req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return session, nil
}

// Verify проверяет access токен и возвращает пользователя
func (c *Client) Verify(ctx context.Context, accessToken string) (*api.User, error) {
	var resp api.VerifyResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/api/auth/verify", callOptions{accessToken: accessToken}, nil, &resp); err != nil {
		return nil, fmt.Errorf("verify request failed: %w", err)
	}
	return &resp.User, nil
}

// Refresh выпускает новый access токен по refresh cookie
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var resp api.RefreshResponse
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/auth/refresh-token", callOptions{refreshToken: refreshToken}, nil, &resp); err != nil {
		return "", fmt.Errorf("refresh request failed: %w", err)
	}
	return resp.Token, nil
}

// Logout отзывает refresh токен на сервере
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", callOptions{refreshToken: refreshToken}, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// ForgotPassword запрашивает токен сброса пароля
// ResetToken заполнен только если сервер работает не в production
func (c *Client) ForgotPassword(ctx context.Context, email string) (*api.ForgotPasswordResponse, error) {
	var resp api.ForgotPasswordResponse
	req := api.ForgotPasswordRequest{Email: email}
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/auth/forgot-password", callOptions{}, req, &resp); err != nil {
		return nil, fmt.Errorf("forgot password request failed: %w", err)
	}
	return &resp, nil
}

// ResetPassword устанавливает новый пароль по токену сброса
func (c *Client) ResetPassword(ctx context.Context, req api.ResetPasswordRequest) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/auth/reset-password", callOptions{}, req, nil); err != nil {
		return fmt.Errorf("reset password request failed: %w", err)
	}
	return nil
}

func (c *Client) startSession(ctx context.Context, path string, body any) (*Session, error) {
	var resp api.AuthResponse
	httpResp, err := c.doRequest(ctx, http.MethodPost, path, callOptions{}, body, &resp)
	if err != nil {
		return nil, err
	}

	// Браузер сохранил бы cookie сам, CLI хранит значение в сессии
	var refresh string
	for _, cookie := range httpResp.Cookies() {
		if cookie.Name == refreshCookieName {
			refresh = cookie.Value
		}
	}
	if refresh == "" {
		return nil, ErrNoRefreshCookie
	}

	return &Session{
		User:         resp.User,
		AccessToken:  resp.Token,
		RefreshToken: refresh,
	}, nil
}

// doRequest выполняет HTTP запрос
// Тело ответа уже прочитано и закрыто, возвращаемый ответ нужен для заголовков
func (c *Client) doRequest(ctx context.Context, method, path string, opts callOptions, body, result any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+opts.accessToken)
	}
	if opts.refreshToken != "" {
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: opts.refreshToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp, nil
}
