package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.PageSize != 5 || cfg.CategoryPageSize != 20 {
		t.Fatalf("page sizes = %d/%d, want 5/20", cfg.PageSize, cfg.CategoryPageSize)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.TokenStore != TokenStoreFile {
		t.Fatalf("TokenStore = %q, want %q", cfg.TokenStore, TokenStoreFile)
	}
	wantToken, err := expandPath(defaultTokenFile)
	if err != nil {
		t.Fatalf("expandPath(defaultTokenFile) returned error: %v", err)
	}
	if cfg.TokenFile != wantToken {
		t.Fatalf("TokenFile = %q, want %q", cfg.TokenFile, wantToken)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.RefreshInterval != 0 {
		t.Fatalf("RefreshInterval = %v, want off", cfg.RefreshInterval)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
api_url = "  https://blog.example.com  "
request_timeout = 3
page_size = 10
category_page_size = 50
log_file = "~/logs/blogen.log"
log_level = "DEBUG"
log_format = "json"
token_store = "redis"
redis_url = "redis://localhost:6379/0"
user_cache_size = 16
user_cache_ttl = 60
refresh_interval = 30
tracing_enabled = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://blog.example.com" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.RequestTimeout != 3*time.Second || cfg.RefreshInterval != 30*time.Second || cfg.UserCacheTTL != time.Minute {
		t.Fatalf("durations = %v/%v/%v", cfg.RequestTimeout, cfg.RefreshInterval, cfg.UserCacheTTL)
	}
	if cfg.PageSize != 10 || cfg.CategoryPageSize != 50 || cfg.UserCacheSize != 16 {
		t.Fatalf("sizes = %d/%d/%d", cfg.PageSize, cfg.CategoryPageSize, cfg.UserCacheSize)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("log = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.LogFile != filepath.Join(home, "logs/blogen.log") {
		t.Fatalf("LogFile = %q, want it expanded under HOME", cfg.LogFile)
	}
	if cfg.TokenStore != TokenStoreRedis || cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("token store = %q %q", cfg.TokenStore, cfg.RedisURL)
	}
	if !cfg.TracingEnabled || cfg.JaegerURL != defaultJaegerURL {
		t.Fatalf("tracing = %v %q", cfg.TracingEnabled, cfg.JaegerURL)
	}
}

func TestLoad_EmptyLogFileDisablesLogging(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(writeConfig(t, `log_file = ""`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogFile != "" {
		t.Fatalf("LogFile = %q, want empty", cfg.LogFile)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BLOGEN_API_URL", "http://override:9000")
	t.Setenv("BLOGEN_PAGE_SIZE", "7")
	t.Setenv("BLOGEN_REFRESH_INTERVAL", "15")
	t.Setenv("BLOGEN_TOKEN_STORE", "NONE")
	t.Setenv("BLOGEN_TRACING_ENABLED", "true")

	cfg, err := Load(writeConfig(t, `
api_url = "http://file:8080"
page_size = 3
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://override:9000" {
		t.Fatalf("APIURL = %q, want env override", cfg.APIURL)
	}
	if cfg.PageSize != 7 {
		t.Fatalf("PageSize = %d, want 7", cfg.PageSize)
	}
	if cfg.RefreshInterval != 15*time.Second {
		t.Fatalf("RefreshInterval = %v, want 15s", cfg.RefreshInterval)
	}
	if cfg.TokenStore != TokenStoreNone {
		t.Fatalf("TokenStore = %q, want none", cfg.TokenStore)
	}
	if !cfg.TracingEnabled {
		t.Fatalf("TracingEnabled = false, want true")
	}
}

func TestLoad_BadEnvIntegerFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BLOGEN_PAGE_SIZE", "lots")
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "BLOGEN_PAGE_SIZE") {
		t.Fatalf("Load error = %v, want BLOGEN_PAGE_SIZE error", err)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := []struct {
		body string
		want string
	}{
		{`api_url = "ftp://example.com"`, "api_url"},
		{`page_size = 0`, "page_size"},
		{`category_page_size = -1`, "category_page_size"},
		{`token_store = "memcached"`, "token_store"},
		{`token_store = "redis"`, "requires redis_url"},
		{`log_level = "loud"`, "log_level"},
	}
	for _, tc := range tests {
		_, err := Load(writeConfig(t, tc.body))
		if err == nil {
			t.Fatalf("Load(%q) returned nil error", tc.body)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("Load(%q) error = %q, want it to mention %q", tc.body, err.Error(), tc.want)
		}
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	_, err := Load(writeConfig(t, `api_url = [`))
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("BLOGEN_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("BLOGEN_TEST_DOTENV", "")
	os.Unsetenv("BLOGEN_TEST_DOTENV")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := os.Getenv("BLOGEN_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("BLOGEN_TEST_DOTENV = %q, want from-file", got)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
