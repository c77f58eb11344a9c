// Package service runs the offline indexing job and the online query pipeline.
package service

import "log/slog"

// Option configures an Indexer or a Pipeline.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the diagnostic logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
