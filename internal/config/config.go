package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultEnvironment     = "local"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultSessionIdleTTL  = 30 * time.Minute
	defaultSweepInterval   = time.Minute
	defaultMaxSessions     = 10000
	defaultIntroDelay      = 2500 * time.Millisecond
	defaultScrollThreshold = 50.0
	defaultLogLevel        = "info"
	defaultTemplatesDir    = "templates"
	defaultPublicDir       = "public"
	defaultLocalesDir      = "locales"
	defaultLocale          = "en"
	devSigningKey          = "elarion-local-development-signing-key"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server     ServerConfig
	Session    SessionConfig
	Storefront StorefrontConfig
	Paths      PathConfig
	Log        LogConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	Environment  string
	Dev          bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SessionConfig controls the signed cookie and session lifetime.
type SessionConfig struct {
	SigningKey    string
	IdleTTL       time.Duration
	SweepInterval time.Duration
	// MaxSessions caps live storefront sessions; the least recently active
	// one is evicted to make room.
	MaxSessions int
}

// StorefrontConfig holds behaviour knobs for each visit.
type StorefrontConfig struct {
	IntroDelay      time.Duration
	ScrollThreshold float64
	CatalogFile     string
	DefaultLocale   string
}

// PathConfig locates templates, static files and translations on disk.
type PathConfig struct {
	Templates string
	Public    string
	Locales   string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
	File  string
}

// Production reports whether the server runs outside local development.
func (c Config) Production() bool {
	return c.Server.Environment == "prod" || c.Server.Environment == "production"
}

// Addr is the listen address for the web server.
func (c Config) Addr() string {
	return ":" + c.Server.Port
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, .env overrides and environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	p := parser{lookup: lookup}
	port := p.string("ELARION_WEB_PORT", "")
	if port == "" {
		port = p.string("PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			Environment:  strings.ToLower(p.string("ELARION_WEB_ENV", defaultEnvironment)),
			Dev:          p.bool("Server.Dev", "ELARION_WEB_DEV", false),
			ReadTimeout:  p.duration("Server.ReadTimeout", "ELARION_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: p.duration("Server.WriteTimeout", "ELARION_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  p.duration("Server.IdleTimeout", "ELARION_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Session: SessionConfig{
			SigningKey:    p.string("ELARION_SESSION_SIGNING_KEY", ""),
			IdleTTL:       p.duration("Session.IdleTTL", "ELARION_SESSION_IDLE_TTL", defaultSessionIdleTTL),
			SweepInterval: p.duration("Session.SweepInterval", "ELARION_SESSION_SWEEP_INTERVAL", defaultSweepInterval),
			MaxSessions:   p.int("Session.MaxSessions", "ELARION_SESSION_MAX", defaultMaxSessions),
		},
		Storefront: StorefrontConfig{
			IntroDelay:      p.duration("Storefront.IntroDelay", "ELARION_INTRO_DELAY", defaultIntroDelay),
			ScrollThreshold: p.float("Storefront.ScrollThreshold", "ELARION_SCROLL_THRESHOLD", defaultScrollThreshold),
			CatalogFile:     p.string("ELARION_CATALOG_FILE", ""),
			DefaultLocale:   p.string("ELARION_DEFAULT_LOCALE", defaultLocale),
		},
		Paths: PathConfig{
			Templates: p.string("ELARION_TEMPLATES_DIR", defaultTemplatesDir),
			Public:    p.string("ELARION_PUBLIC_DIR", defaultPublicDir),
			Locales:   p.string("ELARION_LOCALES_DIR", defaultLocalesDir),
		},
		Log: LogConfig{
			Level: strings.ToLower(p.string("ELARION_LOG_LEVEL", defaultLogLevel)),
			File:  p.string("ELARION_LOG_FILE", ""),
		},
	}

	// Local runs get a fixed key so cookies survive restarts.
	if cfg.Session.SigningKey == "" && !cfg.Production() {
		cfg.Session.SigningKey = devSigningKey
	}

	if err := validateConfig(cfg, p.invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	} else if n, err := strconv.Atoi(cfg.Server.Port); err != nil || n <= 0 || n > 65535 {
		missing = append(missing, "Server.Port")
	}
	switch cfg.Server.Environment {
	case "local", "dev", "staging", "prod", "production":
	default:
		missing = append(missing, "Server.Environment")
	}
	if len(cfg.Session.SigningKey) < 32 {
		missing = append(missing, "Session.SigningKey")
	}
	if cfg.Session.IdleTTL <= 0 {
		missing = append(missing, "Session.IdleTTL")
	}
	if cfg.Session.MaxSessions <= 0 {
		missing = append(missing, "Session.MaxSessions")
	}
	if cfg.Storefront.IntroDelay <= 0 {
		missing = append(missing, "Storefront.IntroDelay")
	}
	if cfg.Storefront.ScrollThreshold < 0 {
		missing = append(missing, "Storefront.ScrollThreshold")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		missing = append(missing, "Log.Level")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: dedupe(missing)}
	}
	return nil
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

// parser reads typed values and remembers which ones failed to parse.
type parser struct {
	lookup  func(string) (string, bool)
	invalid []string
}

func (p *parser) string(key, fallback string) string {
	if value, ok := p.lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func (p *parser) duration(field, key string, fallback time.Duration) time.Duration {
	value, ok := p.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		p.invalid = append(p.invalid, field)
		return fallback
	}
	return d
}

func (p *parser) float(field, key string, fallback float64) float64 {
	value, ok := p.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		p.invalid = append(p.invalid, field)
		return fallback
	}
	return f
}

func (p *parser) int(field, key string, fallback int) int {
	value, ok := p.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		p.invalid = append(p.invalid, field)
		return fallback
	}
	return n
}

func (p *parser) bool(field, key string, fallback bool) bool {
	value, ok := p.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	p.invalid = append(p.invalid, field)
	return fallback
}
