package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Auth      AuthSettings      `mapstructure:"auth"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Location  LocationSettings  `mapstructure:"location"`
}

type AppSettings struct {
	Name               string   `mapstructure:"name"`
	Env                string   `mapstructure:"env"`
	Host               string   `mapstructure:"host"`
	Port               int      `mapstructure:"port"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the optional Redis backend for rate-limit
// counters. When disabled the service falls back to the in-memory store.
type RedisSettings struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

// AuthSettings configures PIN hashing and the access tokens issued on
// sign-in.
type AuthSettings struct {
	PINBcryptCost   int           `mapstructure:"pin_bcrypt_cost"`
	TokenIssuer     string        `mapstructure:"token_issuer"`
	TokenSigningKey string        `mapstructure:"token_signing_key"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
}

// RateLimitSettings configures the sliding-window quotas. Sign-in gets a
// high ceiling over a short window; account creation a low ceiling over a
// long one. Administrator-initiated creation bypasses the limiter by
// route, not by setting.
type RateLimitSettings struct {
	SigninWindow      time.Duration `mapstructure:"signin_window"`
	SigninMaxAttempts int           `mapstructure:"signin_max_attempts"`
	CreateWindow      time.Duration `mapstructure:"create_window"`
	CreateMaxAttempts int           `mapstructure:"create_max_attempts"`
}

// LocationSettings holds the static network perimeter: exact addresses and
// CIDR ranges from which clock-in is allowed.
type LocationSettings struct {
	AllowedIPs   []string `mapstructure:"allowed_ips"`
	AllowedCIDRs []string `mapstructure:"allowed_cidrs"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("TA")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.cors_allowed_origins",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.enabled",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"auth.pin_bcrypt_cost",
		"auth.token_issuer",
		"auth.token_signing_key",
		"auth.access_token_ttl",
		"rate_limit.signin_window",
		"rate_limit.signin_max_attempts",
		"rate_limit.create_window",
		"rate_limit.create_max_attempts",
		"location.allowed_ips",
		"location.allowed_cidrs",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ta-attendance")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.cors_allowed_origins", []string{"*"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "attendance")
	v.SetDefault("postgres.password", "attendance_password")
	v.SetDefault("postgres.database", "attendance")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")

	v.SetDefault("auth.pin_bcrypt_cost", 10)
	v.SetDefault("auth.token_issuer", "ta-attendance")
	v.SetDefault("auth.token_signing_key", "dev-signing-secret-change")
	v.SetDefault("auth.access_token_ttl", "8h")

	v.SetDefault("rate_limit.signin_window", "1m")
	v.SetDefault("rate_limit.signin_max_attempts", 20)
	v.SetDefault("rate_limit.create_window", "10m")
	v.SetDefault("rate_limit.create_max_attempts", 5)

	v.SetDefault("location.allowed_ips", []string{"127.0.0.1", "::1"})
	v.SetDefault("location.allowed_cidrs", []string{"168.229.254.0/24"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "TA_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
