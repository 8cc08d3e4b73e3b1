package internal

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Backend       BackendConfig       `mapstructure:"backend"`
	Security      SecurityConfig      `mapstructure:"security"`
	UI            UIConfig            `mapstructure:"ui"`
	RateLimit     RateLimitConfig     `mapstructure:"ratelimit"`
	Sessions      SessionsConfig      `mapstructure:"sessions"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	Environment       string        `mapstructure:"environment" validate:"omitempty,oneof=development staging production test"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	// TrustedProxies are IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// DatabaseConfig points at the session store.
type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source" validate:"required"`
}

// BackendConfig points at the HRMS REST API the portal renders.
type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type SecurityConfig struct {
	SessionCookieName string        `mapstructure:"session_cookie_name" validate:"required"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	SecureCookies     bool          `mapstructure:"secure_cookies"`
	// JWTSecret is optional. When set, backend tokens are verified before
	// their expiry claim is trusted.
	JWTSecret string `mapstructure:"jwt_secret"`
}

type UIConfig struct {
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	AppName        string        `mapstructure:"app_name"`
}

type RateLimitConfig struct {
	OfferRequestsPerSecond float64 `mapstructure:"offer_requests_per_second" validate:"gt=0"`
	OfferBurst             int     `mapstructure:"offer_burst" validate:"min=1"`
}

type SessionsConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

// ApplyDefaults fills zero values with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Backend.RequestTimeout == 0 {
		c.Backend.RequestTimeout = 10 * time.Second
	}
	if c.Security.SessionCookieName == "" {
		c.Security.SessionCookieName = "hrms_session"
	}
	if c.Security.SessionTTL == 0 {
		c.Security.SessionTTL = 8 * time.Hour
	}
	if c.UI.SearchDebounce == 0 {
		c.UI.SearchDebounce = 500 * time.Millisecond
	}
	if c.UI.AppName == "" {
		c.UI.AppName = "HRMS"
	}
	if c.RateLimit.OfferRequestsPerSecond == 0 {
		c.RateLimit.OfferRequestsPerSecond = 1
	}
	if c.RateLimit.OfferBurst == 0 {
		c.RateLimit.OfferBurst = 5
	}
	if c.Sessions.SweepInterval == 0 {
		c.Sessions.SweepInterval = 15 * time.Minute
	}
}

// LoadConfigFromEnv builds the configuration from plain environment
// variables, used for container deployments.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			Environment:       getEnv("APP_ENV", "production"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 0),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 0),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 0),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 0),
			TrustedProxies:    getEnvAsList("TRUSTED_PROXIES"),
		},
		Database: DatabaseConfig{
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 0),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 0),
			Source:       getEnv("DATABASE_URL", ""),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("BACKEND_BASE_URL", ""),
			RequestTimeout: getEnvAsDuration("BACKEND_REQUEST_TIMEOUT", 0),
		},
		Security: SecurityConfig{
			SessionCookieName: getEnv("SESSION_COOKIE_NAME", ""),
			SessionTTL:        getEnvAsDuration("SESSION_TTL", 0),
			SecureCookies:     getEnvAsBool("SECURE_COOKIES", true),
			JWTSecret:         getEnv("JWT_SECRET", ""),
		},
		UI: UIConfig{
			SearchDebounce: getEnvAsDuration("SEARCH_DEBOUNCE", 0),
			AppName:        getEnv("APP_NAME", ""),
		},
		RateLimit: RateLimitConfig{
			OfferRequestsPerSecond: getEnvAsFloat("OFFER_RATE_LIMIT", 0),
			OfferBurst:             getEnvAsInt("OFFER_RATE_BURST", 0),
		},
		Sessions: SessionsConfig{
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 0),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

var configValidator = validator.New()

func (c *Config) Validate() error {
	var errs []string

	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Backend.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("backend config: %v", err))
	}

	if err := c.Security.Validate(c.Server.Environment); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	for _, p := range c.TrustedProxies {
		p = strings.TrimSpace(p)
		if _, err := netip.ParsePrefix(p); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(p); err != nil {
			return fmt.Errorf("trusted_proxies: %q is not an IP or CIDR", p)
		}
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *BackendConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("base_url must be an http(s) URL")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	return nil
}

func (c *SecurityConfig) Validate(env string) error {
	if c.SessionTTL < time.Minute {
		return errors.New("session_ttl must be at least one minute")
	}
	if env == "production" && !c.SecureCookies {
		return errors.New("secure_cookies must be enabled in production")
	}
	return nil
}
