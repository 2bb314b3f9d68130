package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every store call made by a service.
const DefaultTimeout = 10 * time.Second

type options struct {
	log     zerolog.Logger
	now     func() time.Time
	loc     *time.Location
	timeout time.Duration
}

// Option configures a service.
type Option func(*options)

// WithLogger sets the logger used for failure reporting.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone that defines the user's calendar day.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

// WithTimeout sets the per-call store deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		log:     zerolog.Nop(),
		now:     time.Now,
		loc:     time.Local,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.loc == nil {
		o.loc = time.Local
	}
	return o
}

func (o options) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.timeout)
}
