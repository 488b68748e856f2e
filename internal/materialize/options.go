package materialize

import (
	"log/slog"

	"github.com/relatixjs/relatix/internal/ident"
)

type config struct {
	ids    ident.Generator
	labels ident.LabelFunc
	logger *slog.Logger
}

func newConfig(opts []Option) config {
	cfg := config{
		ids:    ident.UUIDv7Generator{},
		labels: ident.KeyLabel,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures Materialize and NewCreator.
type Option func(*config)

// WithIDGenerator sets the id generator. Default: UUIDv7.
//
// Creator calls g with an empty key and falls back to a UUIDv7 when g
// returns "". A generator deriving ids from the key alone returns the same
// id on every Create call.
func WithIDGenerator(g ident.Generator) Option {
	return func(c *config) {
		if g != nil {
			c.ids = g
		}
	}
}

// WithLabelGenerator sets how population keys become labels.
// Default: the key itself.
func WithLabelGenerator(f ident.LabelFunc) Option {
	return func(c *config) {
		if f != nil {
			c.labels = f
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
