package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CLIENT_ID", "client-id")
	t.Setenv("CLIENT_SECRET", "client-secret")
	t.Setenv("HOST", "http://localhost:3000")
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("DEFAULT_SCOPE", "streaming")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "client-id", cfg.Provider.ClientID)
	assert.Equal(t, "client-secret", cfg.Provider.ClientSecret)
	assert.Equal(t, "http://localhost:3000/callback", cfg.RedirectURI())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout())
	assert.Equal(t, "streaming", cfg.Provider.Scope)
	assert.Equal(t, 10*time.Minute, cfg.StateCookieMaxAge())
	assert.Equal(t, 720*time.Hour, cfg.RefreshCookieMaxAge())
	assert.True(t, cfg.RealtimeEnabled())
	assert.Equal(t, DefaultRealtimeNS, cfg.Realtime.Namespace)
}

func TestLoadFromEnv_BoolDefaults(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		wantSwagger  bool
		wantRealtime bool
	}{
		{name: "production", env: map[string]string{"MODE": "production"}, wantSwagger: false, wantRealtime: true},
		{name: "development", env: map[string]string{"MODE": "development"}, wantSwagger: true, wantRealtime: true},
		{
			name:         "explicit values",
			env:          map[string]string{"MODE": "development", "SWAGGER_ENABLED": "false", "REALTIME_ENABLED": "false"},
			wantSwagger:  false,
			wantRealtime: false,
		},
		{
			name:         "swagger forced on in production",
			env:          map[string]string{"MODE": "production", "SWAGGER_ENABLED": "true"},
			wantSwagger:  true,
			wantRealtime: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := LoadFromEnv()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSwagger, cfg.SwaggerEnabled())
			assert.Equal(t, tt.wantRealtime, cfg.RealtimeEnabled())
		})
	}
}

func TestLoadFromEnv_MissingRequired(t *testing.T) {
	for _, name := range []string{"CLIENT_ID", "CLIENT_SECRET", "HOST"} {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(name, "")

			_, err := LoadFromEnv()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadFromEnv_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROVIDER_TIMEOUT", "later")

	_, err := LoadFromEnv()
	assert.Error(t, err)
}
