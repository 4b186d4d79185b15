package phenograph

import "go.uber.org/zap"

// Option configures an Engine or a HardTrace call. WithTarget and
// WithWorkers only affect HardTrace.
type Option func(*options)

type options struct {
	exclusive bool
	target    []PDG
	workers   int
	hooks     Hooks
	logger    *zap.Logger
}

func defaultOptions() options {
	return options{
		workers: 1,
		logger:  zap.NewNop(),
	}
}

func applyOptions(opts []Option) options {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithExclusive stops a basis vertex from inheriting attribution from its
// own ancestry. With exclusive tracing, descendants of a b quark from
// t -> b W+ show no contribution from the t, since the b is a subset of it.
func WithExclusive(exclusive bool) Option {
	return func(o *options) {
		o.exclusive = exclusive
	}
}

// WithTarget restricts the basis to hard-process particles with one of the
// given PDG codes. Matching is sign-sensitive. No codes means no restriction.
func WithTarget(codes ...PDG) Option {
	return func(o *options) {
		o.target = append([]PDG(nil), codes...)
	}
}

// WithWorkers traces up to n query vertices concurrently. Values below one
// are treated as one.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(h Hooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(h)
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
