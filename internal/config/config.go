package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"golang.org/x/oauth2/spotify"
)

// ErrInvalidConfig повертається, коли конфігурація неповна або некоректна
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DefaultPort            = 3000
	DefaultScope           = "user-read-playback-state"
	DefaultProviderTimeout = 10 * time.Second
	DefaultStateCookie     = "spotify_auth_state"
	DefaultStateMaxAge     = 10 * time.Minute
	DefaultRefreshCookie   = "refresh_token"
	DefaultRefreshMaxAge   = 30 * 24 * time.Hour
	DefaultCookieDomain    = "localhost"
	DefaultRealtimeNS      = "connect"
)

// Config представляє повну конфігурацію relay
type Config struct {
	Server   ServerConfig   `hcl:"server,block"`
	Provider ProviderConfig `hcl:"provider,block"`
	Cookies  CookieConfig   `hcl:"cookies,block"`
	Realtime RealtimeConfig `hcl:"realtime,block"`
}

// ServerConfig містить налаштування HTTP сервера
type ServerConfig struct {
	// Host - публічна базова URL адреса relay, на неї повертається браузер
	Host         string `hcl:"host"`
	ListenHost   string `hcl:"listen_host,optional"`
	Port         int    `hcl:"port,optional"`
	Environment  string `hcl:"environment,optional"`
	LogLevel     string `hcl:"log_level,optional"`
	LogFormat    string `hcl:"log_format,optional"`
	ReadTimeout  string `hcl:"read_timeout,optional"`
	WriteTimeout string `hcl:"write_timeout,optional"`
	IdleTimeout  string `hcl:"idle_timeout,optional"`
	Swagger      *bool  `hcl:"swagger,optional"`
}

// ProviderConfig містить налаштування OAuth2 провайдера
type ProviderConfig struct {
	ClientID     string `hcl:"client_id"`
	ClientSecret string `hcl:"client_secret"`
	AuthURL      string `hcl:"auth_url,optional"`
	TokenURL     string `hcl:"token_url,optional"`
	Scope        string `hcl:"scope,optional"`
	Timeout      string `hcl:"timeout,optional"`
}

// CookieConfig містить налаштування cookie
type CookieConfig struct {
	StateName     string `hcl:"state_name,optional"`
	StateMaxAge   string `hcl:"state_max_age,optional"`
	RefreshName   string `hcl:"refresh_name,optional"`
	RefreshMaxAge string `hcl:"refresh_max_age,optional"`
	Domain        string `hcl:"domain,optional"`
	Secure        bool   `hcl:"secure,optional"`
}

// RealtimeConfig містить налаштування real-time каналу
type RealtimeConfig struct {
	Enabled   *bool  `hcl:"enabled,optional"`
	Namespace string `hcl:"namespace,optional"`
}

// LoadConfig завантажує конфігурацію з HCL файлу.
// У файлі доступна функція env("NAME") для читання змінних середовища.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var config Config
	if err := hclsimple.DecodeFile(configPath, evalContext(), &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// evalContext повертає HCL контекст з функцією env()
func evalContext() *hcl.EvalContext {
	envFunc := function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(os.Getenv(args[0].AsString())), nil
		},
	})

	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

// ApplyDefaults заповнює незадані необов'язкові поля.
// Swagger без явного значення вмикається поза production, real-time канал вмикається завжди.
func (c *Config) ApplyDefaults() {
	if c.Server.ListenHost == "" {
		c.Server.ListenHost = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "production"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = "text"
	}
	if c.Provider.AuthURL == "" {
		c.Provider.AuthURL = spotify.Endpoint.AuthURL
	}
	if c.Provider.TokenURL == "" {
		c.Provider.TokenURL = spotify.Endpoint.TokenURL
	}
	if c.Provider.Scope == "" {
		c.Provider.Scope = DefaultScope
	}
	if c.Cookies.StateName == "" {
		c.Cookies.StateName = DefaultStateCookie
	}
	if c.Cookies.RefreshName == "" {
		c.Cookies.RefreshName = DefaultRefreshCookie
	}
	if c.Cookies.Domain == "" {
		c.Cookies.Domain = DefaultCookieDomain
	}
	if c.Realtime.Namespace == "" {
		c.Realtime.Namespace = DefaultRealtimeNS
	}
	if c.Server.Swagger == nil {
		c.Server.Swagger = boolPtr(!c.IsProduction())
	}
	if c.Realtime.Enabled == nil {
		c.Realtime.Enabled = boolPtr(true)
	}
}

// Validate перевіряє валідність конфігурації
func (c *Config) Validate() error {
	if c.Provider.ClientID == "" {
		return fmt.Errorf("%w: client id is required", ErrInvalidConfig)
	}
	if c.Provider.ClientSecret == "" {
		return fmt.Errorf("%w: client secret is required", ErrInvalidConfig)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}

	host, err := url.Parse(c.Server.Host)
	if err != nil || host.Scheme == "" || host.Host == "" {
		return fmt.Errorf("%w: host must be an absolute URL: %q", ErrInvalidConfig, c.Server.Host)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port: %d", ErrInvalidConfig, c.Server.Port)
	}

	for name, value := range map[string]string{
		"provider timeout":       c.Provider.Timeout,
		"state cookie max age":   c.Cookies.StateMaxAge,
		"refresh cookie max age": c.Cookies.RefreshMaxAge,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: invalid %s %q: %v", ErrInvalidConfig, name, value, err)
		}
	}

	return nil
}

// GetAddress повертає адресу для прослуховування сервера
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.ListenHost, c.Server.Port)
}

// PublicURL повертає базову адресу relay без завершального слеша
func (c *Config) PublicURL() string {
	return strings.TrimRight(c.Server.Host, "/")
}

// RedirectURI повертає redirect_uri, зареєстрований у провайдера
func (c *Config) RedirectURI() string {
	return c.PublicURL() + "/callback"
}

// ProviderTimeout повертає таймаут запитів до провайдера
func (c *Config) ProviderTimeout() time.Duration {
	return parseDuration("provider timeout", c.Provider.Timeout, DefaultProviderTimeout)
}

// StateCookieMaxAge повертає час життя cookie з login state
func (c *Config) StateCookieMaxAge() time.Duration {
	return parseDuration("state cookie max age", c.Cookies.StateMaxAge, DefaultStateMaxAge)
}

// RefreshCookieMaxAge повертає час життя cookie з refresh token
func (c *Config) RefreshCookieMaxAge() time.Duration {
	return parseDuration("refresh cookie max age", c.Cookies.RefreshMaxAge, DefaultRefreshMaxAge)
}

// SwaggerEnabled повертає чи доступний /swagger
func (c *Config) SwaggerEnabled() bool {
	return c.Server.Swagger != nil && *c.Server.Swagger
}

// RealtimeEnabled повертає чи підключено real-time канал
func (c *Config) RealtimeEnabled() bool {
	return c.Realtime.Enabled != nil && *c.Realtime.Enabled
}

// IsDevelopment перевіряє чи relay працює в режимі розробки
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction перевіряє чи relay працює в продакшн режимі
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GenerateConfigFromTemplate генерує HCL конфігурацію з шаблону використовуючи змінні
func GenerateConfigFromTemplate(templatePath, outputPath string, vars map[string]interface{}) error {
	return generateConfigWithVars(templatePath, outputPath, vars)
}

func boolPtr(v bool) *bool {
	return &v
}

func parseDuration(name, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.Warnf("Invalid %s, using default %s: %v", name, fallback, err)
		return fallback
	}
	return d
}
