package api

import "time"

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed by CORS. Empty keeps the default
// of allowing any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithRateLimit limits each client IP to requests per window on /api.
// A non-positive requests value disables the limit.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(s *Server) {
		if requests > 0 && window > 0 {
			s.rateLimit = requests
			s.rateLimitWindow = window
		}
	}
}
