package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"ecogw/internal/domain/models"
	"ecogw/internal/domain/repository"
	"ecogw/pkg/cache"
	applogger "ecogw/pkg/logger"
)

// ErrRateLimited is returned when the local limiter refuses a provider call.
var ErrRateLimited = errors.New("local rate limit")

// Option configures Fetcher.
type Option func(*Fetcher)

// WithCache keeps decodable payloads for ttl and serves them instead of calling the provider.
func WithCache(c cache.BytesCache, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.cache = c
		f.ttl = ttl
	}
}

// WithLimiter bounds the rate of provider calls. Cache hits do not consume tokens.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithBreaker stops calling a provider after repeated transport failures.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(f *Fetcher) {
		f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        f.source.Name(),
			MaxRequests: 1,
			Timeout:     openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				f.logger.Warn("circuit breaker state changed",
					applogger.String("job", name),
					applogger.String("from", from.String()),
					applogger.String("to", to.String()),
				)
			},
		})
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// Fetcher joins a SignalSource and its SignalDecoder into a SignalFetcher.
type Fetcher struct {
	source repository.SignalSource
	decode repository.SignalDecoder

	cache   cache.BytesCache
	ttl     time.Duration
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *applogger.Logger
}

var _ repository.SignalFetcher = (*Fetcher)(nil)

// New creates a fetcher. Options are applied in order, so WithLogger should come first.
func New(source repository.SignalSource, decode repository.SignalDecoder, opts ...Option) *Fetcher {
	f := &Fetcher{
		source: source,
		decode: decode,
		logger: applogger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Name() string { return f.source.Name() }

// Fetch returns decoded signals. Errors wrap models.ErrTransport or models.ErrFormat.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.DailySignal, error) {
	if signals, ok := f.fromCache(ctx); ok {
		return signals, nil
	}

	if f.limiter != nil && !f.limiter.Allow() {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrTransport, f.Name(), ErrRateLimited)
	}

	payload, err := f.call(ctx)
	if err != nil {
		return nil, err
	}

	signals, err := f.decode(payload)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.SetBytes(ctx, f.Name(), payload, f.ttl); err != nil {
			f.logger.Warn("cache payload failed", applogger.String("job", f.Name()), applogger.Error(err))
		}
	}
	return signals, nil
}

func (f *Fetcher) fromCache(ctx context.Context) ([]models.DailySignal, bool) {
	if f.cache == nil {
		return nil, false
	}
	payload, err := f.cache.GetBytes(ctx, f.Name())
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			f.logger.Warn("cache lookup failed", applogger.String("job", f.Name()), applogger.Error(err))
		}
		return nil, false
	}
	signals, err := f.decode(payload)
	if err != nil {
		f.logger.Warn("cached payload not decodable", applogger.String("job", f.Name()), applogger.Error(err))
		return nil, false
	}
	f.logger.Debug("served from cache", applogger.String("job", f.Name()))
	return signals, true
}

func (f *Fetcher) call(ctx context.Context) ([]byte, error) {
	if f.breaker == nil {
		return f.source.Fetch(ctx)
	}

	out, err := f.breaker.Execute(func() (interface{}, error) {
		return f.source.Fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %w", models.ErrTransport, f.Name(), err)
		}
		return nil, err
	}
	return out.([]byte), nil
}

// BreakerState reports the breaker state, or "disabled".
func (f *Fetcher) BreakerState() string {
	if f.breaker == nil {
		return "disabled"
	}
	return f.breaker.State().String()
}
