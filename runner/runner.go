package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ecociel/calcagent/domain"
	"github.com/ecociel/calcagent/lib/clock"
	"github.com/ecociel/calcagent/metrics"
)

const (
	DefaultMaxAttempts = 10
	DefaultRetryDelay  = 1 * time.Second
	DefaultWarmUp      = 5 * time.Second
)

var (
	ErrExhausted = errors.New("maximum publish attempts reached")
	ErrPermanent = errors.New("permanent publish failure")
)

// Connection is a broker connection scoped to a single attempt.
type Connection interface {
	PublishSync(ctx context.Context, topic string, value []byte) error
	Close()
}

type Connector = func(ctx context.Context) (Connection, error)

// Runner publishes one task message, retrying with a fixed delay until
// the first success or until MaxAttempts attempts have failed.
type Runner struct {
	connect     Connector
	topic       string
	maxAttempts int
	retryDelay  time.Duration
	warmUp      time.Duration
	abortOn     func(error) bool
	clock       clock.Clock
	logger      *slog.Logger
	metrics     metrics.PublisherMetrics
}

type Option func(*Runner)

func WithMaxAttempts(n int) Option { return func(r *Runner) { r.maxAttempts = n } }

func WithRetryDelay(d time.Duration) Option { return func(r *Runner) { r.retryDelay = d } }

func WithWarmUp(d time.Duration) Option { return func(r *Runner) { r.warmUp = d } }

func WithClock(c clock.Clock) Option { return func(r *Runner) { r.clock = c } }

func WithLogger(l *slog.Logger) Option { return func(r *Runner) { r.logger = l } }

func WithMetrics(m metrics.PublisherMetrics) Option { return func(r *Runner) { r.metrics = m } }

// WithAbortOn stops retrying as soon as fn reports an attempt error as
// permanent. By default every error is retried.
func WithAbortOn(fn func(error) bool) Option { return func(r *Runner) { r.abortOn = fn } }

func New(connect Connector, topic string, opts ...Option) *Runner {
	r := &Runner{
		connect:     connect,
		topic:       topic,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		warmUp:      DefaultWarmUp,
		abortOn:     func(error) bool { return false },
		clock:       clock.Real(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:     metrics.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run returns nil once msg is published, ErrExhausted when every attempt
// failed, an error wrapping ErrPermanent when an attempt failed for a
// reason the abort predicate rejects, or ctx.Err() when ctx ends first.
func (r *Runner) Run(ctx context.Context, msg domain.TaskMessage) error {
	body, err := msg.Marshal()
	if err != nil {
		return err
	}

	if r.warmUp > 0 {
		r.logger.Info("waiting for dependent services", "warm_up", r.warmUp)
		if err := r.wait(ctx, r.warmUp); err != nil {
			return err
		}
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		r.logger.Info("publishing task", "attempt", attempt, "topic", r.topic)
		r.metrics.AttemptStarted()

		start := r.clock.Now()
		err := r.attempt(ctx, body)
		r.metrics.PublishLatency(r.clock.Now().Sub(start))
		if err == nil {
			r.metrics.Published()
			r.logger.Info("published task", "attempt", attempt, "topic", r.topic)
			return nil
		}

		r.metrics.PublishFailed()
		r.logger.Warn("publish failed", "attempt", attempt, "topic", r.topic, "err", err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if r.abortOn(err) {
			return fmt.Errorf("%w on attempt %d: %w", ErrPermanent, attempt, err)
		}

		r.logger.Info("waiting before next attempt", "delay", r.retryDelay)
		if err := r.wait(ctx, r.retryDelay); err != nil {
			return err
		}
	}

	r.logger.Error("giving up", "max_attempts", r.maxAttempts, "topic", r.topic)
	return fmt.Errorf("%w (%d) for topic %s", ErrExhausted, r.maxAttempts, r.topic)
}

// attempt holds the connection only for the duration of one publish.
func (r *Runner) attempt(ctx context.Context, body []byte) error {
	conn, err := r.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	return conn.PublishSync(ctx, r.topic, body)
}

func (r *Runner) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.clock.After(d):
		return nil
	}
}
