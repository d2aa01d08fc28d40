package rc

import "log/slog"

type options struct {
	logger *slog.Logger
}

// Option configures a Heap.
type Option func(*options)

// WithLogger routes heap events to l at debug level. A nil logger disables
// logging, which is also the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
