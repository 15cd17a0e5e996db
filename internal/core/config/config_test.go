package config

import (
	"reflect"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":8090" || cfg.NRoundCorners != 32 || cfg.MaskCacheTTL != time.Hour || cfg.MaxMaskPixels != 1<<24 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.RedisAddr != "" || len(cfg.Settings) != 0 {
		t.Fatalf("redis and settings should default empty: %+v", cfg)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("LOG_CONSOLE", "true")
	t.Setenv("MASK_CACHE_TTL", "5m")
	t.Setenv("MAX_MASK_PIXELS", "4096")
	t.Setenv("SETTINGS", "!INST.pixel_scale=0.004, INST.name=micado,!OBS.dit=2")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Addr != ":9999" || !cfg.LogConsole || cfg.MaskCacheTTL != 5*time.Minute || cfg.MaxMaskPixels != 4096 {
		t.Fatalf("cfg = %+v", cfg)
	}
	want := map[string]any{"INST.pixel_scale": 0.004, "INST.name": "micado", "OBS.dit": 2}
	if !reflect.DeepEqual(cfg.Settings, want) {
		t.Fatalf("settings = %v want %v", cfg.Settings, want)
	}
}

func TestFromEnv_RejectsFewCorners(t *testing.T) {
	t.Setenv("N_ROUND_CORNERS", "2")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFromEnv_RejectsZeroPixelBudget(t *testing.T) {
	t.Setenv("MAX_MASK_PIXELS", "0")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseSettings_SkipsMalformed(t *testing.T) {
	got := parseSettings("a=1,,novalue,=3, b = true ")
	want := map[string]any{"a": 1, "b": true}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
