package relatix

import (
	"log/slog"

	"github.com/relatixjs/relatix/internal/ident"
	"github.com/relatixjs/relatix/internal/resolve"
)

type config struct {
	ids         ident.Generator
	labels      ident.LabelFunc
	logger      *slog.Logger
	maxDepth    int
	diagnostics func(resolve.UnresolvedReference)
}

func defaultConfig() config {
	return config{
		ids:      ident.UUIDv7Generator{},
		labels:   ident.KeyLabel,
		logger:   slog.Default(),
		maxDepth: resolve.DefaultMaxDepth,
	}
}

// Option configures a model.
type Option func(*config)

// WithIDGenerator sets how record ids are generated from population keys.
// Default: UUIDv7.
//
// Records built with Model.Create draw from the same function with an empty
// key, and get a UUIDv7 when it returns "". A function of the key alone, such
// as "p-"+key, returns the same id for every created record, so only the first
// of them survives AddOne. Pass WithID to Create in that case.
func WithIDGenerator(fn func(key string) string) Option {
	return func(c *config) {
		if fn != nil {
			c.ids = ident.GeneratorFunc(fn)
		}
	}
}

// WithKeyIDs uses population keys as record ids.
func WithKeyIDs() Option {
	return func(c *config) {
		c.ids = ident.KeyGenerator{}
	}
}

// WithSequentialIDs generates prefix-1, prefix-2, ... in population order.
func WithSequentialIDs(prefix string) Option {
	return func(c *config) {
		c.ids = ident.NewSequenceGenerator(prefix)
	}
}

// WithLabelGenerator sets how population keys become labels.
// Default: the key itself.
func WithLabelGenerator(fn func(key string) string) Option {
	return func(c *config) {
		if fn != nil {
			c.labels = fn
		}
	}
}

// WithLogger sets the logger for every component. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxDepth sets the default depth of deep resolution. Default: 10.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithDiagnostics registers a callback for references deep resolution
// leaves unresolved.
func WithDiagnostics(fn func(resolve.UnresolvedReference)) Option {
	return func(c *config) {
		c.diagnostics = fn
	}
}
