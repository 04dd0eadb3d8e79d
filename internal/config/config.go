// Package config собирает настройки сервера из .env файлов и переменных окружения.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Окружения
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Драйверы хранилища
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// MinSecretLen минимальная длина JWT секрета в production
const MinSecretLen = 32

// Значения по умолчанию
const (
	DefaultHTTPAddr        = ":5000"
	DefaultSQLiteDSN       = "todo.db"
	DefaultAccessTTL       = 15 * time.Minute
	DefaultRefreshTTL      = 7 * 24 * time.Hour
	DefaultResetTTL        = time.Hour
	DefaultRateLimit       = 20
	DefaultRateLimitWindow = 15 * time.Minute
	DefaultJanitorInterval = 15 * time.Minute
	DefaultCORSOrigin      = "http://localhost:5173"
)

var (
	// ErrMissingSecret секрет не задан в production
	ErrMissingSecret = errors.New("jwt secret is required in production")
	// ErrWeakSecret секрет короче MinSecretLen
	ErrWeakSecret = errors.New("jwt secret is too short")
	// ErrSharedSecret access и refresh секреты совпадают
	ErrSharedSecret = errors.New("access and refresh secrets must differ")
)

// Config настройки сервера
type Config struct {
	Env      string
	HTTPAddr string
	DB       DatabaseConfig
	JWT      JWTConfig
	Log      LogConfig
	CORS     []string
	Reset    ResetConfig
	Limit    RateLimitConfig
	Janitor  time.Duration
	// EphemeralSecrets секреты сгенерированы при старте, сессии не переживут рестарт
	EphemeralSecrets bool
}

// DatabaseConfig выбор хранилища
type DatabaseConfig struct {
	Driver string // sqlite или postgres
	DSN    string // путь к файлу или postgres URL
}

// JWTConfig секреты и время жизни токенов
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// ResetConfig сброс пароля
type ResetConfig struct {
	TTL time.Duration
	// Expose возвращать reset token в ответе, только вне production
	Expose bool
}

// RateLimitConfig лимит auth запросов на IP
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// LogConfig уровень и формат логов
type LogConfig struct {
	Level  string
	Format string
}

// IsProduction запущен ли сервер в production
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Override меняет настройки после чтения окружения, до валидации
type Override func(*Config)

// Load читает .env файлы (отсутствующие пропускаются), затем окружение
// Переменные окружения имеют приоритет над .env, overrides над окружением
func Load(files []string, overrides ...Override) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		Env:      strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		HTTPAddr: getEnv("HTTP_ADDR", DefaultHTTPAddr),
		DB: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
			DSN:    getEnv("DB_DSN", ""),
		},
		JWT: JWTConfig{
			AccessSecret:  []byte(getEnv("JWT_ACCESS_SECRET", "")),
			RefreshSecret: []byte(getEnv("JWT_REFRESH_SECRET", "")),
			AccessTTL:     p.duration("ACCESS_TOKEN_TTL", DefaultAccessTTL),
			RefreshTTL:    p.duration("REFRESH_TOKEN_TTL", DefaultRefreshTTL),
		},
		Reset: ResetConfig{
			TTL: p.duration("RESET_TOKEN_TTL", DefaultResetTTL),
		},
		CORS: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", DefaultCORSOrigin)),
		Limit: RateLimitConfig{
			Requests: p.int("RATE_LIMIT_REQUESTS", DefaultRateLimit),
			Window:   p.duration("RATE_LIMIT_WINDOW", DefaultRateLimitWindow),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Janitor: p.duration("JANITOR_INTERVAL", DefaultJanitorInterval),
	}
	cfg.Reset.Expose = p.bool("RESET_TOKEN_EXPOSE", !cfg.IsProduction())

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек и дополняет пропуски:
// путь sqlite по умолчанию и случайные секреты вне production
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, "test":
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.Env)
	}

	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		if c.DB.Driver == DriverPostgres {
			return errors.New("DB_DSN is required for postgres")
		}
		c.DB.DSN = DefaultSQLiteDSN
	}

	if err := c.validateSecrets(); err != nil {
		return err
	}

	if c.IsProduction() && c.Reset.Expose {
		return errors.New("RESET_TOKEN_EXPOSE cannot be enabled in production")
	}

	for name, d := range map[string]time.Duration{
		"ACCESS_TOKEN_TTL":  c.JWT.AccessTTL,
		"REFRESH_TOKEN_TTL": c.JWT.RefreshTTL,
		"RESET_TOKEN_TTL":   c.Reset.TTL,
		"RATE_LIMIT_WINDOW": c.Limit.Window,
		"JANITOR_INTERVAL":  c.Janitor,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Limit.Requests <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS must be positive")
	}
	return nil
}

func (c *Config) validateSecrets() error {
	if c.IsProduction() {
		if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
			return ErrMissingSecret
		}
		if len(c.JWT.AccessSecret) < MinSecretLen || len(c.JWT.RefreshSecret) < MinSecretLen {
			return fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLen)
		}
	}

	if len(c.JWT.AccessSecret) == 0 {
		c.JWT.AccessSecret = randomSecret()
		c.EphemeralSecrets = true
	}
	if len(c.JWT.RefreshSecret) == 0 {
		c.JWT.RefreshSecret = randomSecret()
		c.EphemeralSecrets = true
	}

	if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
		return ErrSharedSecret
	}
	return nil
}

func randomSecret() []byte {
	b := make([]byte, MinSecretLen)
	// crypto/rand.Read не возвращает ошибок начиная с Go 1.24
	_, _ = rand.Read(b)
	return b
}

// parser запоминает первую ошибку разбора
type parser struct {
	err error
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return d
}

func (p *parser) int(key string, fallback int) int {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return n
}

func (p *parser) bool(key string, fallback bool) bool {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		p.fail(key, err)
		return fallback
	}
	return b
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func splitCSV(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
