package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// relayEnv містить сирі значення змінних середовища
type relayEnv struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Host         string `env:"HOST"`
	Port         int    `env:"PORT" envDefault:"3000"`

	ListenHost   string   `env:"LISTEN_HOST" envDefault:"0.0.0.0"`
	Environment  string   `env:"MODE" envDefault:"production"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string   `env:"LOG_FORMAT" envDefault:"text"`
	ReadTimeout  Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	Swagger      *bool    `env:"SWAGGER_ENABLED"`

	AuthURL         string   `env:"PROVIDER_AUTH_URL"`
	TokenURL        string   `env:"PROVIDER_TOKEN_URL"`
	Scope           string   `env:"DEFAULT_SCOPE"`
	ProviderTimeout Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	StateCookie   string   `env:"STATE_COOKIE_NAME"`
	StateMaxAge   Duration `env:"STATE_COOKIE_MAX_AGE" envDefault:"10m"`
	RefreshCookie string   `env:"REFRESH_COOKIE_NAME"`
	RefreshMaxAge Duration `env:"REFRESH_COOKIE_MAX_AGE" envDefault:"720h"`
	CookieDomain  string   `env:"COOKIE_DOMAIN"`
	CookieSecure  bool     `env:"COOKIE_SECURE" envDefault:"false"`

	RealtimeEnabled   *bool  `env:"REALTIME_ENABLED"`
	RealtimeNamespace string `env:"REALTIME_NAMESPACE"`
}

// LoadFromEnv читає конфігурацію зі змінних середовища.
// Якщо поруч є .env файл, його значення підхоплюються, але не перекривають вже задані.
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var raw relayEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := raw.toConfig()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (e relayEnv) toConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         e.Host,
			ListenHost:   e.ListenHost,
			Port:         e.Port,
			Environment:  e.Environment,
			LogLevel:     e.LogLevel,
			LogFormat:    e.LogFormat,
			ReadTimeout:  e.ReadTimeout.String(),
			WriteTimeout: e.WriteTimeout.String(),
			IdleTimeout:  e.IdleTimeout.String(),
			Swagger:      e.Swagger,
		},
		Provider: ProviderConfig{
			ClientID:     e.ClientID,
			ClientSecret: e.ClientSecret,
			AuthURL:      e.AuthURL,
			TokenURL:     e.TokenURL,
			Scope:        e.Scope,
			Timeout:      e.ProviderTimeout.String(),
		},
		Cookies: CookieConfig{
			StateName:     e.StateCookie,
			StateMaxAge:   e.StateMaxAge.String(),
			RefreshName:   e.RefreshCookie,
			RefreshMaxAge: e.RefreshMaxAge.String(),
			Domain:        e.CookieDomain,
			Secure:        e.CookieSecure,
		},
		Realtime: RealtimeConfig{
			Enabled:   e.RealtimeEnabled,
			Namespace: e.RealtimeNamespace,
		},
	}
}
