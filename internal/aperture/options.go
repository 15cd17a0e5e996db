package aperture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mohammed-shakir/aperture-engine/internal/geometry"
	"github.com/mohammed-shakir/aperture-engine/internal/raster"
	"github.com/mohammed-shakir/aperture-engine/internal/settings"
	"github.com/mohammed-shakir/aperture-engine/internal/table"
)

// MaskCache memoizes rasterized masks by geometry key across apertures.
type MaskCache interface {
	Get(key string) (*raster.Mask, bool)
	Put(key string, m *raster.Mask)
}

type options struct {
	logger    *slog.Logger
	cache     MaskCache
	namespace string
	resolver  geometry.Resolver
	maxPixels int
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMaskCache(c MaskCache) Option {
	return func(o *options) { o.cache = c }
}

// WithCacheNamespace prefixes mask cache keys, e.g. with an instrument name.
func WithCacheNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithPolygonResolver loads outlines for file-referenced shapes in a list.
func WithPolygonResolver(r geometry.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithMaxPixels bounds the size of a rasterized mask. Larger grids fail
// with raster.ErrTooLarge. n <= 0 keeps raster.DefaultMaxPixels.
func WithMaxPixels(n int) Option {
	return func(o *options) { o.maxPixels = n }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(discardHandler{})}
	for _, f := range opts {
		f(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(discardHandler{})
	}
	return o
}

func (o options) list() []Option {
	return []Option{
		WithLogger(o.logger),
		WithMaskCache(o.cache),
		WithCacheNamespace(o.namespace),
		WithPolygonResolver(o.resolver),
		WithMaxPixels(o.maxPixels),
	}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// --- meta accessors ---

func metaFloat(meta map[string]any, key string) (float64, error) {
	v, ok := meta[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrSchema, key)
	}
	if settings.IsRef(v) {
		return 0, fmt.Errorf("%s: %w: %v", key, settings.ErrUnresolved, v)
	}
	f, err := table.Float(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func metaInt(meta map[string]any, key string) (int, error) {
	v, ok := meta[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrSchema, key)
	}
	if settings.IsRef(v) {
		return 0, fmt.Errorf("%s: %w: %v", key, settings.ErrUnresolved, v)
	}
	n, err := table.Int(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func metaBool(meta map[string]any, key string) (bool, error) {
	v, ok := meta[key]
	if !ok {
		return false, fmt.Errorf("%w: missing %q", ErrSchema, key)
	}
	if settings.IsRef(v) {
		return false, fmt.Errorf("%s: %w: %v", key, settings.ErrUnresolved, v)
	}
	b, err := table.Bool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
