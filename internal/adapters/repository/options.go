package repository

import "time"

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithMaxOpenConns caps the pool size. Idle connections follow the same cap.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithConnMaxLifetime sets how long a pooled connection may be reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(s *SQLStore) {
		if d > 0 {
			s.connMaxLifetime = d
		}
	}
}

// WithConnMaxIdleTime sets how long a connection may sit idle in the pool.
func WithConnMaxIdleTime(d time.Duration) Option {
	return func(s *SQLStore) {
		if d > 0 {
			s.connMaxIdleTime = d
		}
	}
}

// GuardOption applies a configuration option to Guarded.
type GuardOption func(*Guarded)

// WithBreakerName names the breaker in metrics and logs.
func WithBreakerName(name string) GuardOption {
	return func(g *Guarded) {
		if name != "" {
			g.name = name
		}
	}
}

// WithMaxFailures sets how many consecutive failures open the breaker.
func WithMaxFailures(n uint32) GuardOption {
	return func(g *Guarded) {
		if n > 0 {
			g.maxFailures = n
		}
	}
}

// WithOpenTimeout sets how long the breaker stays open before probing again.
func WithOpenTimeout(d time.Duration) GuardOption {
	return func(g *Guarded) {
		if d > 0 {
			g.openTimeout = d
		}
	}
}

// WithHalfOpenRequests sets how many probe calls pass while half-open.
func WithHalfOpenRequests(n uint32) GuardOption {
	return func(g *Guarded) {
		if n > 0 {
			g.halfOpenRequests = n
		}
	}
}
