// Package config loads scanner tunables from application.properties and the environment.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/idelchi/foldersize/internal/log"
)

// Recognized keys.
const (
	KeyCacheMaxEntries      = "cache.maxEntries"
	KeyCacheTTLMillis       = "cache.ttlMillis"
	KeyAllowPermanentDelete = "delete.allowPermanent"
	KeyLogLevel             = "log.level"
)

// Defaults.
const (
	DefaultCacheMaxEntries = 2000
	DefaultCacheTTLMillis  = 30_000
	DefaultLogLevel        = "info"
)

// EnvPrefix prefixes environment overrides, e.g. FOLDERSIZE_CACHE_TTLMILLIS.
const EnvPrefix = "FOLDERSIZE"

// Config holds the resolved settings.
type Config struct {
	// CacheMaxEntries bounds the directory size cache.
	CacheMaxEntries int
	// CacheTTL is how long a cached size may be reused.
	CacheTTL time.Duration
	// AllowPermanentDelete permits deletion when the trash is unavailable.
	AllowPermanentDelete bool
	// LogLevel is the zerolog level name.
	LogLevel string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		CacheMaxEntries: DefaultCacheMaxEntries,
		CacheTTL:        DefaultCacheTTLMillis * time.Millisecond,
		LogLevel:        DefaultLogLevel,
	}
}

// Load reads file, or application.properties from the working directory when
// file is empty, then applies environment overrides. Missing, unset or
// unparsable values fall back to defaults without error.
func Load(file string) Config {
	v, err := newViper()
	if err != nil {
		log.Warn().Err(err).Msg("ignoring config")

		return Default()
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("application")
		v.AddConfigPath(".")
	}

	v.SetConfigType("properties")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("file", file).Msg("ignoring unreadable config")
		}
	}

	return resolve(v)
}

func resolve(v *viper.Viper) Config {
	cfg := Default()

	if n, ok := positiveInt(v.Get(KeyCacheMaxEntries)); ok {
		cfg.CacheMaxEntries = int(n)
	}

	if n, ok := positiveInt(v.Get(KeyCacheTTLMillis)); ok {
		cfg.CacheTTL = time.Duration(n) * time.Millisecond
	}

	if raw := v.Get(KeyAllowPermanentDelete); raw != nil {
		if b, err := cast.ToBoolE(trim(raw)); err == nil {
			cfg.AllowPermanentDelete = b
		}
	}

	if level := strings.TrimSpace(v.GetString(KeyLogLevel)); level != "" {
		cfg.LogLevel = level
	}

	return cfg
}

// positiveInt parses raw as a positive integer.
func positiveInt(raw any) (int64, bool) {
	if raw == nil {
		return 0, false
	}

	n, err := cast.ToInt64E(trim(raw))
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

func trim(raw any) any {
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}

	return raw
}
