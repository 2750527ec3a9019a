package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrStoreUnavailable marks any failure to reach or query the reading store,
// including timeouts and an open circuit breaker.
var ErrStoreUnavailable = errors.New("reading store unavailable")

// Querier is the subset of *pgxpool.Pool the store depends on.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Options configures the reading source and its failure handling.
type Options struct {
	Table           string
	PersonsColumn   string
	TimestampColumn string

	QueryTimeout     time.Duration
	BreakerThreshold uint32
	BreakerTimeout   time.Duration

	Logger *zap.Logger
}

// Store wraps database access helpers.
type Store struct {
	pool    *pgxpool.Pool
	q       Querier
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[any]

	latestSQL string
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string, opts Options) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	store, err := NewWithQuerier(pool, opts)
	if err != nil {
		pool.Close()
		return nil, err
	}
	store.pool = pool
	return store, nil
}

// NewWithQuerier builds a Store on top of an arbitrary Querier.
func NewWithQuerier(q Querier, opts Options) (*Store, error) {
	if q == nil {
		return nil, errors.New("querier must not be nil")
	}
	latestSQL, err := buildLatestSQL(opts.Table, opts.PersonsColumn, opts.TimestampColumn)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "reading_store"))

	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	threshold := opts.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := opts.BreakerTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "reading-store",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about store health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Store{
		q:         q,
		timeout:   timeout,
		breaker:   breaker,
		latestSQL: latestSQL,
	}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// BreakerState reports the circuit breaker state for diagnostics.
func (s *Store) BreakerState() string {
	return s.breaker.State().String()
}

const pingSQL = `SELECT NOW()`

// Ping returns the database clock, confirming the connection works.
func (s *Store) Ping(ctx context.Context) (time.Time, error) {
	res, err := s.execute(ctx, func(ctx context.Context) (any, error) {
		var now time.Time
		if err := s.q.QueryRow(ctx, pingSQL).Scan(&now); err != nil {
			return nil, err
		}
		return now, nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return res.(time.Time), nil
}

// execute runs fn under the query timeout and the circuit breaker, mapping
// every failure onto ErrStoreUnavailable.
func (s *Store) execute(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	res, err := s.breaker.Execute(func() (any, error) {
		qctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return fn(qctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return res, nil
}
