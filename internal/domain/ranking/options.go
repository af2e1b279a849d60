package ranking

// Default engine settings.
const (
	DefaultCurrentYear   = 2024
	DefaultHistoryWindow = 5
	MaxHistoryWindow     = 5
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCurrentYear sets the edition treated as current.
func WithCurrentYear(year int) Option {
	return func(e *Engine) {
		if year > 0 {
			e.currentYear = year
		}
	}
}

// WithHistoryWindow sets how many editions, ending at the current one, a
// song history covers. Values outside 1..MaxHistoryWindow are ignored.
func WithHistoryWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 && n <= MaxHistoryWindow {
			e.historyWindow = n
		}
	}
}
