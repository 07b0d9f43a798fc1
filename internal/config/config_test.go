package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func load(t *testing.T, env map[string]string, opts ...Option) (Config, error) {
	t.Helper()
	base := []Option{WithEnvMap(env), WithoutSystemEnv(), WithEnvFile("")}
	return Load(context.Background(), append(base, opts...)...)
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := load(t, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("unexpected addr %s", cfg.Addr())
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Session.IdleTTL != 30*time.Minute {
		t.Errorf("unexpected idle ttl: %s", cfg.Session.IdleTTL)
	}
	if cfg.Session.MaxSessions != 10000 {
		t.Errorf("unexpected session cap: %d", cfg.Session.MaxSessions)
	}
	if cfg.Storefront.IntroDelay != 2500*time.Millisecond {
		t.Errorf("unexpected intro delay: %s", cfg.Storefront.IntroDelay)
	}
	if cfg.Storefront.ScrollThreshold != 50 {
		t.Errorf("unexpected scroll threshold: %v", cfg.Storefront.ScrollThreshold)
	}
	if cfg.Session.SigningKey != devSigningKey {
		t.Errorf("expected development signing key outside prod")
	}
	if cfg.Production() {
		t.Errorf("default environment must not be production")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("unexpected log level %s", cfg.Log.Level)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"ELARION_WEB_PORT":            "9090",
		"ELARION_WEB_DEV":             "yes",
		"ELARION_SERVER_READ_TIMEOUT": "20s",
		"ELARION_SESSION_IDLE_TTL":    "5m",
		"ELARION_SESSION_MAX":         "250",
		"ELARION_INTRO_DELAY":         "1s",
		"ELARION_SCROLL_THRESHOLD":    "120.5",
		"ELARION_CATALOG_FILE":        "/etc/elarion/catalog.yaml",
		"ELARION_LOG_LEVEL":           "DEBUG",
		"ELARION_TEMPLATES_DIR":       "/srv/templates",
	}
	cfg, err := load(t, env)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" || !cfg.Server.Dev {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout %s", cfg.Server.ReadTimeout)
	}
	if cfg.Session.IdleTTL != 5*time.Minute {
		t.Errorf("unexpected idle ttl %s", cfg.Session.IdleTTL)
	}
	if cfg.Session.MaxSessions != 250 {
		t.Errorf("unexpected session cap %d", cfg.Session.MaxSessions)
	}
	if cfg.Storefront.IntroDelay != time.Second || cfg.Storefront.ScrollThreshold != 120.5 {
		t.Errorf("unexpected storefront config: %+v", cfg.Storefront)
	}
	if cfg.Storefront.CatalogFile != "/etc/elarion/catalog.yaml" {
		t.Errorf("unexpected catalog file %s", cfg.Storefront.CatalogFile)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected lower-cased level, got %s", cfg.Log.Level)
	}
	if cfg.Paths.Templates != "/srv/templates" || cfg.Paths.Public != "public" {
		t.Errorf("unexpected paths %+v", cfg.Paths)
	}
}

func TestLoadFallsBackToPORT(t *testing.T) {
	cfg, err := load(t, map[string]string{"PORT": "3000"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("expected PORT fallback, got %s", cfg.Server.Port)
	}

	cfg, err = load(t, map[string]string{"PORT": "3000", "ELARION_WEB_PORT": "4000"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "4000" {
		t.Errorf("expected ELARION_WEB_PORT to win, got %s", cfg.Server.Port)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"ELARION_WEB_PORT":         "http",
		"ELARION_WEB_ENV":          "prod",
		"ELARION_INTRO_DELAY":      "soon",
		"ELARION_SCROLL_THRESHOLD": "-1",
		"ELARION_LOG_LEVEL":        "verbose",
	}
	_, err := load(t, env)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	want := []string{
		"Storefront.IntroDelay",
		"Server.Port",
		"Session.SigningKey",
		"Storefront.ScrollThreshold",
		"Log.Level",
	}
	if got := vErr.Fields(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected fields\nwant %v\ngot  %v", want, got)
	}
}

func TestLoadProductionRequiresSigningKey(t *testing.T) {
	env := map[string]string{
		"ELARION_WEB_ENV":             "prod",
		"ELARION_SESSION_SIGNING_KEY": "0123456789abcdef0123456789abcdef",
	}
	cfg, err := load(t, env)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Production() {
		t.Errorf("expected production")
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nexport ELARION_WEB_PORT=7000\nELARION_LOG_LEVEL='warn'\nELARION_INTRO_DELAY=\"3s\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ELARION_LOG_LEVEL", "error")

	cfg, err := Load(context.Background(),
		WithEnvFile(path),
		WithEnvMap(map[string]string{"ELARION_INTRO_DELAY": "4s"}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("expected dotenv port, got %s", cfg.Server.Port)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("expected OS env to override dotenv, got %s", cfg.Log.Level)
	}
	if cfg.Storefront.IntroDelay != 4*time.Second {
		t.Errorf("expected env map to override everything, got %s", cfg.Storefront.IntroDelay)
	}
}
