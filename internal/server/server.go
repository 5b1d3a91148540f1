package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"oauth-relay/docs"
	"oauth-relay/internal/build"
	"oauth-relay/internal/config"
	"oauth-relay/internal/handlers"
	"oauth-relay/internal/middleware"
	"oauth-relay/internal/realtime"
	"oauth-relay/internal/services"
	"oauth-relay/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 5 * time.Second

// Dependencies дозволяє підмінити зовнішніх співрозмовників relay.
// Незадані поля створюються з конфігурації.
type Dependencies struct {
	Provider services.ProviderService
	Channel  realtime.Channel
}

// StartServer запускає HTTP сервер і чекає SIGINT/SIGTERM для graceful shutdown
func StartServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return Run(ctx, cfg, Dependencies{})
}

// Run перевіряє конфігурацію, слухає адресу з конфігурації і обслуговує запити до завершення ctx.
// При некоректній конфігурації повертає помилку до відкриття сокета.
func Run(ctx context.Context, cfg *config.Config, deps Dependencies) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	setupLogging(cfg)

	router, err := NewRouter(cfg, deps)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.GetAddress())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GetAddress(), err)
	}

	return serve(ctx, cfg, router, listener)
}

func serve(ctx context.Context, cfg *config.Config, handler http.Handler, listener net.Listener) error {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  durationOrDefault("read timeout", cfg.Server.ReadTimeout, 30*time.Second),
		WriteTimeout: durationOrDefault("write timeout", cfg.Server.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOrDefault("idle timeout", cfg.Server.IdleTimeout, 120*time.Second),
	}

	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("🚀 Starting OAuth relay on %s", listener.Addr())
		logrus.Infof("Public host: %s", cfg.PublicURL())
		logrus.Infof("Environment: %s", cfg.Server.Environment)

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	logrus.Info("✅ Server exited gracefully")
	return nil
}

// NewRouter створює gin engine з усіма маршрутами relay
func NewRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))

	setupRoutes(r, cfg, deps)

	return r, nil
}

// setupRoutes налаштовує маршрути
func setupRoutes(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	providerService := deps.Provider
	if providerService == nil {
		providerService = services.NewProviderService(services.ProviderOptions{
			ClientID:     cfg.Provider.ClientID,
			ClientSecret: cfg.Provider.ClientSecret,
			AuthURL:      cfg.Provider.AuthURL,
			TokenURL:     cfg.Provider.TokenURL,
			RedirectURI:  cfg.RedirectURI(),
			Timeout:      cfg.ProviderTimeout(),
		})
	}

	authService := services.NewAuthService(
		services.NewStateService(),
		providerService,
		cfg.Provider.ClientID,
		cfg.Provider.Scope,
	)

	authHandler := handlers.NewAuthHandler(authService, handlers.CookieOptions{
		StateName:     cfg.Cookies.StateName,
		StateMaxAge:   cfg.StateCookieMaxAge(),
		RefreshName:   cfg.Cookies.RefreshName,
		RefreshMaxAge: cfg.RefreshCookieMaxAge(),
		Domain:        cfg.Cookies.Domain,
		Secure:        cfg.Cookies.Secure,
	}, cfg.PublicURL())
	indexHandler := handlers.NewIndexHandler(cfg.PublicURL(), build.Version)
	healthHandler := handlers.NewHealthHandler(build.Version)

	r.GET("/", indexHandler.Index)
	r.StaticFS("/static", web.Static())
	r.GET("/health", healthHandler.Health)

	r.GET("/login", authHandler.Login)
	r.GET("/callback", authHandler.Callback)
	r.POST("/token", authHandler.Token)

	if cfg.SwaggerEnabled() {
		docs.SwaggerInfo.Version = build.Version
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.RealtimeEnabled() {
		channel := deps.Channel
		if channel == nil {
			channel = realtime.NewKeepAlive(cfg.Realtime.Namespace)
		}
		realtime.Attach(r, channel, realtime.Options{})
	}
}

// setupLogging налаштовує логування
func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid log level '%s', using info", cfg.Server.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Server.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

func durationOrDefault(name, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.Warnf("Invalid %s, using default: %v", name, err)
		return fallback
	}
	return d
}
