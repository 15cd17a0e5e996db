package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr           string        `env:"ADDR"             envDefault:":8090"`
	LogLevel       string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogConsole     bool          `env:"LOG_CONSOLE"`
	LogSampleN     int           `env:"LOG_SAMPLE_N"`
	MetricsEnabled bool          `env:"METRICS_ENABLED"`
	MetricsAddr    string        `env:"METRICS_ADDR"     envDefault:":9090"`
	MetricsPath    string        `env:"METRICS_PATH"     envDefault:"/metrics"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	CacheOpTimeout time.Duration `env:"CACHE_OP_TIMEOUT" envDefault:"250ms"`
	CacheNamespace string        `env:"CACHE_NAMESPACE"  envDefault:"aperture"`
	MaskCacheSize  int           `env:"MASK_CACHE_SIZE"  envDefault:"1024"`
	MaskCacheTTL   time.Duration `env:"MASK_CACHE_TTL"   envDefault:"1h"`
	NRoundCorners  int           `env:"N_ROUND_CORNERS"  envDefault:"32"`
	MaxMaskPixels  int           `env:"MAX_MASK_PIXELS"  envDefault:"16777216"`
	SettingsRaw    string        `env:"SETTINGS"`

	// Settings seeds the per-request settings context, parsed from SettingsRaw.
	Settings map[string]any `env:"-"`
}

// FromEnv reads the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.NRoundCorners < 3 {
		return cfg, fmt.Errorf("N_ROUND_CORNERS must be at least 3, got %d", cfg.NRoundCorners)
	}
	if cfg.MaxMaskPixels < 1 {
		return cfg, fmt.Errorf("MAX_MASK_PIXELS must be positive, got %d", cfg.MaxMaskPixels)
	}
	if cfg.MaskCacheSize < 0 {
		cfg.MaskCacheSize = 0
	}
	cfg.Settings = parseSettings(cfg.SettingsRaw)
	return cfg, nil
}

// parse "!INST.pixel_scale=0.004,!OBS.airmass=1.2" into map
func parseSettings(s string) map[string]any {
	out := map[string]any{}
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.TrimPrefix(strings.TrimSpace(kv[0]), "!")
		v := strings.TrimSpace(kv[1])
		if k == "" {
			continue
		}
		out[k] = scalar(v)
	}
	return out
}

func scalar(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}
