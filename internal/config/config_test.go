package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

// clearEnv unsets every key Options reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_ADDRESS", "DATABASE_DSN", "CONFIG", "JWT_SECRET_KEY", "TOKEN_TTL",
		"LOG_LEVEL", "TLS_CERT_FILE", "TLS_KEY_FILE", "REVOCATION_CLEANUP_INTERVAL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	opts, err := parse(newFlagSet(), []string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", opts.Port)
	assert.Empty(t, opts.DatabaseDSN)
	assert.Equal(t, time.Hour, opts.TokenTTL)
	assert.Equal(t, time.Hour, opts.CleanupInterval)
	assert.Equal(t, "info", opts.LogLevel)
	assert.False(t, opts.TLSEnabled())
}

func TestParse_Flags(t *testing.T) {
	clearEnv(t)

	opts, err := parse(newFlagSet(), []string{"-a", ":9090", "-d", "postgres://flag", "-c", ""})
	require.NoError(t, err)

	assert.Equal(t, ":9090", opts.Port)
	assert.Equal(t, "postgres://flag", opts.DatabaseDSN)
}

func TestParse_FileOverridesFlags(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"server_address": ":7000",
		"database_dsn": "postgres://file",
		"jwt_secret_key": "file-secret",
		"token_ttl": "15m",
		"revocation_cleanup_interval": "5m"
	}`)

	opts, err := parse(newFlagSet(), []string{"-a", ":9090", "-c", path})
	require.NoError(t, err)

	assert.Equal(t, ":7000", opts.Port)
	assert.Equal(t, "postgres://file", opts.DatabaseDSN)
	assert.Equal(t, "file-secret", opts.JWTSecret)
	assert.Equal(t, 15*time.Minute, opts.TokenTTL)
	assert.Equal(t, 5*time.Minute, opts.CleanupInterval)
}

func TestParse_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"server_address": ":7000", "jwt_secret_key": "file-secret"}`)
	t.Setenv("CONFIG", path)
	t.Setenv("SERVER_ADDRESS", ":6000")
	t.Setenv("JWT_SECRET_KEY", "env-secret")
	t.Setenv("TOKEN_TTL", "2h")

	opts, err := parse(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, path, opts.Config)
	assert.Equal(t, ":6000", opts.Port)
	assert.Equal(t, "env-secret", opts.JWTSecret)
	assert.Equal(t, 2*time.Hour, opts.TokenTTL)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "malformed file", file: `{not json`},
		{name: "bad file duration", file: `{"token_ttl": "soon"}`},
		{name: "bad env duration", file: `{}`, env: map[string]string{"TOKEN_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := parse(newFlagSet(), []string{"-c", writeConfig(t, tt.file)})
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Options{
		DatabaseDSN:     "postgres://x",
		JWTSecret:       "k",
		TokenTTL:        time.Hour,
		CleanupInterval: time.Hour,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(o *Options)
		substr string
	}{
		{"missing dsn", func(o *Options) { o.DatabaseDSN = "" }, "database DSN"},
		{"missing secret", func(o *Options) { o.JWTSecret = "" }, "signing key"},
		{"zero ttl", func(o *Options) { o.TokenTTL = 0 }, "token TTL"},
		{"zero interval", func(o *Options) { o.CleanupInterval = 0 }, "cleanup interval"},
		{"cert without key", func(o *Options) { o.TLSCertFile = "server.crt" }, "TLS_CERT_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			err := o.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}
