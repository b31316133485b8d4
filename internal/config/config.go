package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Listing ListingConfig
	Auth    AuthConfig
	Redis   RedisConfig
	Log     LogConfig
}

type AppConfig struct {
	AppName              string
	Environment          string
	HTTPPort             string
	PlaceholderAvatarURL string
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ListingConfig struct {
	PageSize         int
	SnapshotTTL      time.Duration
	RefreshPerMinute int
	FilterDebounce   time.Duration
	TaxonomyFile     string
}

// AuthConfig enables the session guard when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string
	Cookie    string
	LoginURL  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type LogConfig struct {
	Level string
}

func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.App.Environment) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

// LoadDotEnv reads the given .env files, or ./.env when none are given. A
// missing file is not an error; existing variables are never overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func Load() (Config, error) {
	cfg := Config{}

	var missing, invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optInt := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optDuration := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		d, err := parseDuration(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return d
	}

	cfg.App = AppConfig{
		AppName:              req("APP_NAME"),
		Environment:          req("APP_ENV"),
		HTTPPort:             req("HTTP_PORT"),
		PlaceholderAvatarURL: opt("PLACEHOLDER_AVATAR_URL"),
	}

	cfg.Backend = BackendConfig{
		BaseURL: req("BACKEND_BASE_URL"),
		Timeout: optDuration("BACKEND_TIMEOUT", 10*time.Second),
	}

	cfg.Listing = ListingConfig{
		PageSize:         optInt("PAGE_SIZE", 10),
		SnapshotTTL:      optDuration("SNAPSHOT_TTL", 5*time.Minute),
		RefreshPerMinute: optInt("REFRESH_PER_MINUTE", 6),
		FilterDebounce:   optDuration("FILTER_DEBOUNCE", 300*time.Millisecond),
		TaxonomyFile:     opt("TAXONOMY_FILE"),
	}
	if cfg.Listing.PageSize == 0 {
		invalid = append(invalid, "PAGE_SIZE")
	}

	cfg.Auth = AuthConfig{
		JWTSecret: opt("AUTH_JWT_SECRET"),
		Cookie:    opt("AUTH_COOKIE"),
		LoginURL:  opt("LOGIN_URL"),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      optDuration("REDIS_TTL", 600*time.Second),
	}

	cfg.Log = LogConfig{Level: opt("LOG_LEVEL")}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// parseDuration accepts Go duration syntax or a plain number of seconds.
func parseDuration(raw string) (time.Duration, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration %q", raw)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}
