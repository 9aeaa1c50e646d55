package services

import (
	"time"

	"github.com/vytor/numguess/internal/game"
)

type options struct {
	now     func() time.Time
	secrets game.SecretSource
}

// Option configures a service.
type Option func(*options)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithSecretSource overrides how secret numbers are drawn.
func WithSecretSource(src game.SecretSource) Option {
	return func(o *options) {
		o.secrets = src
	}
}

func applyOptions(opts []Option) options {
	o := options{
		now:     func() time.Time { return time.Now().UTC() },
		secrets: game.RandomSource{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
