// AngelaMos | 2026
// config_test.go

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "Auth Backend",
			Environment: "development",
			PublicURL:   "http://localhost:3000",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			URL: "postgres://localhost:5432/auth",
		},
		Redis: RedisConfig{
			URL: "redis://localhost:6379/0",
		},
		JWT: JWTConfig{
			PrivateKeyPath: "keys/private.pem",
			PublicKeyPath:  "keys/public.pem",
			TokenExpire:    240 * time.Hour,
		},
		SMTP: SMTPConfig{
			Host: "localhost",
			From: "no-reply@example.com",
		},
		Captcha: CaptchaConfig{
			Enabled:   true,
			Secret:    "secret",
			Threshold: 0.5,
		},
		Google: GoogleConfig{
			ClientID: "client-id.apps.googleusercontent.com",
		},
	}
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	t.Parallel()

	require.NoError(t, validate(validConfig()))
}

func TestValidate_RequiredFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database url", func(c *Config) { c.Database.URL = "" }},
		{"missing redis url", func(c *Config) { c.Redis.URL = "" }},
		{"missing private key", func(c *Config) { c.JWT.PrivateKeyPath = "" }},
		{"missing public key", func(c *Config) { c.JWT.PublicKeyPath = "" }},
		{"zero token expire", func(c *Config) { c.JWT.TokenExpire = 0 }},
		{"missing smtp host", func(c *Config) { c.SMTP.Host = "" }},
		{"missing smtp from", func(c *Config) { c.SMTP.From = "" }},
		{"missing google client id", func(c *Config) { c.Google.ClientID = "" }},
		{
			"captcha enabled without secret",
			func(c *Config) { c.Captcha.Secret = "" },
		},
		{
			"captcha threshold out of range",
			func(c *Config) { c.Captcha.Threshold = 1.5 },
		},
		{
			"wildcard origin with credentials",
			func(c *Config) {
				c.CORS.AllowCredentials = true
				c.CORS.AllowedOrigins = []string{"*"}
			},
		},
		{
			"insecure otel in production",
			func(c *Config) {
				c.App.Environment = "production"
				c.Otel.Enabled = true
				c.Otel.Insecure = true
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}
}

func TestValidate_CaptchaDisabledNeedsNoSecret(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Captcha.Enabled = false
	cfg.Captcha.Secret = ""

	assert.NoError(t, validate(cfg))
}

func TestServerConfig_Address(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	assert.Equal(t, "127.0.0.1:9000", s.Address())
}

func TestEnvKeyReplacer(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "database.url", envKeyReplacer("DATABASE_URL"))
	assert.Equal(t, "captcha.secret", envKeyReplacer("CAPTCHA_SECRET"))
	// unmapped variables are dropped, not guessed at
	assert.Equal(t, "", envKeyReplacer("PATH"))
}
