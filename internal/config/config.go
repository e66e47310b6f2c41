package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Token store kinds accepted by token_store.
const (
	TokenStoreFile  = "file"
	TokenStoreRedis = "redis"
	TokenStoreNone  = "none"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "BLOGEN"

// Config is the resolved client configuration.
type Config struct {
	APIURL           string
	RequestTimeout   time.Duration
	PageSize         int
	CategoryPageSize int

	LogFile   string
	LogLevel  string
	LogFormat string

	TokenStore string
	TokenFile  string
	RedisURL   string

	UserCacheSize int
	UserCacheTTL  time.Duration

	RefreshInterval time.Duration

	TracingEnabled bool
	JaegerURL      string
}

const (
	defaultConfigPath       = "~/.config/blogen/config.toml"
	defaultAPIURL           = "http://localhost:8080"
	defaultRequestTimeout   = 10
	defaultPageSize         = 5
	defaultCategoryPageSize = 20
	defaultLogFile          = "~/.local/share/blogen/blogen.log"
	defaultLogLevel         = "info"
	defaultLogFormat        = "text"
	defaultTokenFile        = "~/.config/blogen/session.toml"
	defaultUserCacheSize    = 128
	defaultUserCacheTTL     = 300
	defaultJaegerURL        = "http://localhost:14268/api/traces"
)

// rawConfig mirrors config.toml. Numeric keys and log_file are pointers so
// an explicit zero or empty value is kept.
type rawConfig struct {
	APIURL           string  `toml:"api_url"`
	RequestTimeout   *int    `toml:"request_timeout"`
	PageSize         *int    `toml:"page_size"`
	CategoryPageSize *int    `toml:"category_page_size"`
	LogFile          *string `toml:"log_file"`
	LogLevel         string  `toml:"log_level"`
	LogFormat        string  `toml:"log_format"`
	TokenStore       string  `toml:"token_store"`
	TokenFile        string  `toml:"token_file"`
	RedisURL         string  `toml:"redis_url"`
	UserCacheSize    *int    `toml:"user_cache_size"`
	UserCacheTTL     *int    `toml:"user_cache_ttl"`
	RefreshInterval  *int    `toml:"refresh_interval"`
	TracingEnabled   bool    `toml:"tracing_enabled"`
	JaegerURL        string  `toml:"jaeger_url"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:           defaultAPIURL,
		RequestTimeout:   defaultRequestTimeout * time.Second,
		PageSize:         defaultPageSize,
		CategoryPageSize: defaultCategoryPageSize,
		LogFile:          mustExpand(defaultLogFile),
		LogLevel:         defaultLogLevel,
		LogFormat:        defaultLogFormat,
		TokenStore:       TokenStoreFile,
		TokenFile:        mustExpand(defaultTokenFile),
		UserCacheSize:    defaultUserCacheSize,
		UserCacheTTL:     defaultUserCacheTTL * time.Second,
		JaegerURL:        defaultJaegerURL,
	}
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// Load reads the TOML config, applies BLOGEN_* environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	bytes, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if bytes != nil {
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := fromRaw(raw)
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.LogFile = expandOrKeep(cfg.LogFile)
	cfg.TokenFile = expandOrKeep(cfg.TokenFile)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return bytes, nil
}

func fromRaw(raw rawConfig) Config {
	cfg := Default()
	cfg.APIURL = orDefault(raw.APIURL, cfg.APIURL)
	cfg.LogLevel = strings.ToLower(orDefault(raw.LogLevel, cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(orDefault(raw.LogFormat, cfg.LogFormat))
	cfg.TokenStore = strings.ToLower(orDefault(raw.TokenStore, cfg.TokenStore))
	cfg.TokenFile = orDefault(raw.TokenFile, cfg.TokenFile)
	cfg.RedisURL = strings.TrimSpace(raw.RedisURL)
	cfg.TracingEnabled = raw.TracingEnabled
	cfg.JaegerURL = orDefault(raw.JaegerURL, cfg.JaegerURL)

	if raw.LogFile != nil {
		cfg.LogFile = strings.TrimSpace(*raw.LogFile)
	}
	if raw.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(*raw.RequestTimeout) * time.Second
	}
	if raw.PageSize != nil {
		cfg.PageSize = *raw.PageSize
	}
	if raw.CategoryPageSize != nil {
		cfg.CategoryPageSize = *raw.CategoryPageSize
	}
	if raw.UserCacheSize != nil {
		cfg.UserCacheSize = *raw.UserCacheSize
	}
	if raw.UserCacheTTL != nil {
		cfg.UserCacheTTL = time.Duration(*raw.UserCacheTTL) * time.Second
	}
	if raw.RefreshInterval != nil {
		cfg.RefreshInterval = time.Duration(*raw.RefreshInterval) * time.Second
	}
	return cfg
}

// applyEnv overlays BLOGEN_<KEY> variables, e.g. BLOGEN_API_URL.
func applyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			if s := strings.TrimSpace(v.GetString(key)); s != "" {
				*dst = s
			}
		}
	}
	var intErr error
	num := func(key string) (int, bool) {
		if !v.IsSet(key) {
			return 0, false
		}
		n, err := parseInt(v.GetString(key))
		if err != nil && intErr == nil {
			intErr = fmt.Errorf("%s_%s: %w", EnvPrefix, strings.ToUpper(key), err)
		}
		return n, err == nil
	}
	seconds := func(key string, dst *time.Duration) {
		if n, ok := num(key); ok {
			*dst = time.Duration(n) * time.Second
		}
	}
	count := func(key string, dst *int) {
		if n, ok := num(key); ok {
			*dst = n
		}
	}

	str("api_url", &cfg.APIURL)
	str("log_file", &cfg.LogFile)
	str("log_level", &cfg.LogLevel)
	str("log_format", &cfg.LogFormat)
	str("token_store", &cfg.TokenStore)
	str("token_file", &cfg.TokenFile)
	str("redis_url", &cfg.RedisURL)
	str("jaeger_url", &cfg.JaegerURL)
	seconds("request_timeout", &cfg.RequestTimeout)
	seconds("user_cache_ttl", &cfg.UserCacheTTL)
	seconds("refresh_interval", &cfg.RefreshInterval)
	count("page_size", &cfg.PageSize)
	count("category_page_size", &cfg.CategoryPageSize)
	count("user_cache_size", &cfg.UserCacheSize)
	if v.IsSet("tracing_enabled") {
		cfg.TracingEnabled = v.GetBool("tracing_enabled")
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.TokenStore = strings.ToLower(cfg.TokenStore)
	return intErr
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.CategoryPageSize <= 0 {
		return fmt.Errorf("category_page_size must be positive, got %d", c.CategoryPageSize)
	}
	if c.UserCacheSize <= 0 {
		return fmt.Errorf("user_cache_size must be positive, got %d", c.UserCacheSize)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	switch c.TokenStore {
	case TokenStoreFile, TokenStoreNone:
	case TokenStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("token_store %q requires redis_url", c.TokenStore)
		}
	default:
		return fmt.Errorf("unknown token_store %q", c.TokenStore)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if s := strings.TrimSpace(value); s != "" {
		return s
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

// expandOrKeep expands a path, leaving the empty string alone.
func expandOrKeep(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return mustExpand(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
