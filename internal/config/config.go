package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppCfg struct{ Env, Port, LogLevel string }
type DBCfg struct{ DSN string }
type RedisCfg struct{ Addr string }

type TelemetryCfg struct {
	OTLPEndpoint string
	Insecure     bool
}

type SecurityCfg struct {
	AESKey     []byte
	AdminToken string
	// KeyCacheTTL bounds how long parsed signing keys stay in memory. Zero
	// disables the cache.
	KeyCacheTTL time.Duration
}

type HTTPCfg struct {
	Timeout    time.Duration
	MaxRetries int
}

type ConnectorsCfg struct {
	NordeaBaseURL         string
	NordeaSignatureScheme string
	MoneiBaseURL          string
}

type Cfg struct {
	App        AppCfg
	DB         DBCfg
	Redis      RedisCfg
	Sec        SecurityCfg
	HTTP       HTTPCfg
	Connectors ConnectorsCfg
	Telemetry  TelemetryCfg
}

const (
	SchemeNordea  = "nordea"
	SchemeGeneric = "generic"
)

// SetDefaults registers every key with its default so AutomaticEnv can
// resolve it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "sandbox")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("AES_256_KEY_BASE64", "")
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("HTTP_TIMEOUT_SEC", 30)
	v.SetDefault("HTTP_MAX_RETRIES", 2)
	v.SetDefault("KEY_CACHE_TTL", "10m")
	v.SetDefault("NORDEA_BASE_URL", "https://api.nordeaopenbanking.com")
	v.SetDefault("NORDEA_SIGNATURE_SCHEME", SchemeNordea)
	v.SetDefault("MONEI_BASE_URL", "https://api.monei.com")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
}

// Parse reads and validates a configuration from v.
func Parse(v *viper.Viper) (Cfg, error) {
	cfg := Cfg{
		App: AppCfg{
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		},
		DB:    DBCfg{DSN: v.GetString("DB_DSN")},
		Redis: RedisCfg{Addr: v.GetString("REDIS_ADDR")},
		Sec:   SecurityCfg{AdminToken: strings.TrimSpace(v.GetString("ADMIN_TOKEN"))},
		HTTP: HTTPCfg{
			Timeout:    time.Duration(v.GetInt("HTTP_TIMEOUT_SEC")) * time.Second,
			MaxRetries: v.GetInt("HTTP_MAX_RETRIES"),
		},
		Connectors: ConnectorsCfg{
			NordeaBaseURL:         v.GetString("NORDEA_BASE_URL"),
			NordeaSignatureScheme: strings.ToLower(strings.TrimSpace(v.GetString("NORDEA_SIGNATURE_SCHEME"))),
			MoneiBaseURL:          v.GetString("MONEI_BASE_URL"),
		},
		Telemetry: TelemetryCfg{
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:     v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		},
	}

	if cfg.DB.DSN == "" {
		return cfg, errors.New("DB_DSN is required")
	}
	key, err := base64.StdEncoding.DecodeString(v.GetString("AES_256_KEY_BASE64"))
	if err != nil || len(key) != 32 {
		return cfg, errors.New("AES_256_KEY_BASE64 must be a valid 32-byte base64 key")
	}
	cfg.Sec.AESKey = key

	ttl, err := time.ParseDuration(v.GetString("KEY_CACHE_TTL"))
	if err != nil || ttl < 0 {
		return cfg, fmt.Errorf("KEY_CACHE_TTL must be a non-negative duration: %q", v.GetString("KEY_CACHE_TTL"))
	}
	cfg.Sec.KeyCacheTTL = ttl

	if cfg.HTTP.Timeout <= 0 {
		return cfg, errors.New("HTTP_TIMEOUT_SEC must be positive")
	}
	if cfg.HTTP.MaxRetries < 0 {
		return cfg, errors.New("HTTP_MAX_RETRIES must not be negative")
	}
	switch cfg.Connectors.NordeaSignatureScheme {
	case SchemeNordea, SchemeGeneric:
	default:
		return cfg, fmt.Errorf("NORDEA_SIGNATURE_SCHEME must be %q or %q", SchemeNordea, SchemeGeneric)
	}
	return cfg, nil
}

// IsDevelopment reports whether human-readable logs are wanted.
func (c AppCfg) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "sandbox"
}

func Load() Cfg {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	v := viper.New()
	v.AutomaticEnv()
	SetDefaults(v)

	cfg, err := Parse(v)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}
