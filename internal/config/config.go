// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultAddress         = "localhost:8080"
	defaultConfigPath      = "config.json"
	defaultTokenTTL        = time.Hour
	defaultLogLevel        = "info"
	defaultCleanupInterval = time.Hour
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `env:"SERVER_ADDRESS"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// Config is the path to the Config file.
	Config string `env:"CONFIG"`

	// JWTSecret is the HMAC key used to sign and verify session tokens.
	JWTSecret string `env:"JWT_SECRET_KEY"`

	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration `env:"TOKEN_TTL"`

	LogLevel string `env:"LOG_LEVEL"`

	// TLSCertFile and TLSKeyFile switch the server to HTTPS when both are set.
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	// CleanupInterval is how often expired revoked tokens are purged.
	CleanupInterval time.Duration `env:"REVOCATION_CLEANUP_INTERVAL"`
}

// fileOptions mirrors Options in the JSON config file. Durations are written
// as Go duration strings ("90m").
type fileOptions struct {
	ServerAddress   string `json:"server_address"`
	DatabaseDSN     string `json:"database_dsn"`
	JWTSecret       string `json:"jwt_secret_key"`
	TokenTTL        string `json:"token_ttl"`
	LogLevel        string `json:"log_level"`
	TLSCertFile     string `json:"tls_cert_file"`
	TLSKeyFile      string `json:"tls_key_file"`
	CleanupInterval string `json:"revocation_cleanup_interval"`
}

// Parse parses the command-line flags, the config file and environment
// variables, in that order of increasing precedence.
func Parse() (*Options, error) {
	return parse(flag.CommandLine, os.Args[1:])
}

func parse(fs *flag.FlagSet, args []string) (*Options, error) {
	options := &Options{}

	fs.StringVar(&options.Port, "a", defaultAddress, "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", defaultConfigPath, "path to config file")
	fs.StringVar(&options.Config, "c", defaultConfigPath, "path to config file (shorthand)")
	fs.StringVar(&options.LogLevel, "l", defaultLogLevel, "log level")
	options.TokenTTL = defaultTokenTTL
	options.CleanupInterval = defaultCleanupInterval

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// The config path itself may come from the environment.
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if err := options.applyFile(); err != nil {
		return nil, err
	}

	if err := env.Parse(options); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return options, nil
}

// applyFile overlays non-empty values from the JSON config file. A missing
// file is not an error.
func (o *Options) applyFile() error {
	if o.Config == "" {
		return nil
	}
	data, err := os.ReadFile(o.Config)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f fileOptions
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&o.Port, f.ServerAddress)
	setString(&o.DatabaseDSN, f.DatabaseDSN)
	setString(&o.JWTSecret, f.JWTSecret)
	setString(&o.LogLevel, f.LogLevel)
	setString(&o.TLSCertFile, f.TLSCertFile)
	setString(&o.TLSKeyFile, f.TLSKeyFile)
	if err := setDuration(&o.TokenTTL, f.TokenTTL); err != nil {
		return fmt.Errorf("config file token_ttl: %w", err)
	}
	if err := setDuration(&o.CleanupInterval, f.CleanupInterval); err != nil {
		return fmt.Errorf("config file revocation_cleanup_interval: %w", err)
	}
	return nil
}

// Validate reports settings the server cannot start without.
func (o *Options) Validate() error {
	var errs []error
	if o.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required (-d or DATABASE_DSN)"))
	}
	if o.JWTSecret == "" {
		errs = append(errs, errors.New("signing key is required (JWT_SECRET_KEY)"))
	}
	if o.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token TTL must be positive, got %s", o.TokenTTL))
	}
	if o.CleanupInterval <= 0 {
		errs = append(errs, fmt.Errorf("cleanup interval must be positive, got %s", o.CleanupInterval))
	}
	if (o.TLSCertFile == "") != (o.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

// TLSEnabled reports whether the server should serve HTTPS.
func (o *Options) TLSEnabled() bool {
	return o.TLSCertFile != "" && o.TLSKeyFile != ""
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
