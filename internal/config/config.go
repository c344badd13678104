package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const EnvProduction = "production"

// Config centraliza la configuración del servicio.
type Config struct {
	AppEnv        string `env:"APP_ENV" envDefault:"development"`
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	JWTAccessSecret     string `env:"JWT_ACCESS_SECRET,required"`
	JWTRefreshSecret    string `env:"JWT_REFRESH_SECRET,required"`
	JWTIssuer           string `env:"JWT_ISSUER" envDefault:"coursehub-api"`
	JWTAudience         string `env:"JWT_AUDIENCE" envDefault:"coursehub-web"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLHours  int    `env:"JWT_REFRESH_TTL_HOURS" envDefault:"168"`

	OTPTTLMinutes            int `env:"OTP_TTL_MINUTES" envDefault:"30"`
	OTPMaxAttempts           int `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
	OTPResendCooldownSeconds int `env:"OTP_RESEND_COOLDOWN_SECONDS" envDefault:"60"`

	RefreshCookieName   string `env:"REFRESH_COOKIE_NAME" envDefault:"refresh_token"`
	RefreshCookiePath   string `env:"REFRESH_COOKIE_PATH" envDefault:"/auth"`
	RefreshCookieDomain string `env:"REFRESH_COOKIE_DOMAIN"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	RateLimitMax            int    `env:"RATE_LIMIT_MAX" envDefault:"20"`
	RateLimitWindowSeconds  int    `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	RateLimitKeyPrefix      string `env:"RATE_LIMIT_KEY_PREFIX" envDefault:"auth:rl:"`
	RateLimitRedisTimeoutMs int    `env:"RATE_LIMIT_REDIS_TIMEOUT_MS" envDefault:"500"`
	RateLimitIPv6PrefixBits int    `env:"RATE_LIMIT_IPV6_PREFIX_BITS" envDefault:"64"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"CourseHub"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

var (
	ErrSharedJWTSecret = errors.New("jwt access and refresh secrets must differ")
	ErrInvalidPolicy   = errors.New("token and otp policy values must be positive")
)

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa invariantes que env no puede expresar con tags.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTAccessSecret) == strings.TrimSpace(c.JWTRefreshSecret) {
		return ErrSharedJWTSecret
	}
	if c.JWTAccessTTLMinutes <= 0 || c.JWTRefreshTTLHours <= 0 ||
		c.OTPTTLMinutes <= 0 || c.OTPMaxAttempts <= 0 || c.OTPResendCooldownSeconds < 0 {
		return ErrInvalidPolicy
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), EnvProduction)
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWTRefreshTTLHours) * time.Hour
}

func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLMinutes) * time.Minute
}

func (c *Config) ResendCooldown() time.Duration {
	return time.Duration(c.OTPResendCooldownSeconds) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func (c *Config) RateLimitRedisTimeout() time.Duration {
	return time.Duration(c.RateLimitRedisTimeoutMs) * time.Millisecond
}
