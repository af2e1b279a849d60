// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"

	service "github.com/okian/top2000/internal/app"
	"github.com/okian/top2000/internal/domain/model"
	"github.com/okian/top2000/pkg/errkind"
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	CurrentYear() int

	Songs(ctx context.Context, page, pageSize int) (model.Page, error)
	Song(ctx context.Context, id int) (model.SongDetail, error)
	SongBySlug(ctx context.Context, slug string) (model.SongDetail, error)
	SongHistory(ctx context.Context, id int) ([]model.HistoryPoint, error)

	DroppedSongs(ctx context.Context, year int) ([]model.DroppedSong, error)
	NewEntries(ctx context.Context, year int) ([]model.YearEntry, error)
	LostEntries(ctx context.Context, year int) ([]model.LostEntry, error)
	Reentries(ctx context.Context, year int) ([]model.YearEntry, error)
	Unchanged(ctx context.Context, year int) ([]model.YearEntry, error)
	YearSummary(ctx context.Context, year int) (model.YearSummary, error)
	EveryEdition(ctx context.Context) ([]model.EditionSong, error)

	Artists(ctx context.Context) ([]model.ArtistSongCount, error)
	Artist(ctx context.Context, id int) (model.ArtistDetail, error)
}

// Server wires HTTP routes for the chart API.
type Server struct {
	deps Dependencies

	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	songsHandler      *SongsHandler
	statisticsHandler *StatisticsHandler
	artistsHandler    *ArtistsHandler

	corsOrigins     []string
	rateLimit       int
	rateLimitWindow time.Duration
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:              deps,
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		songsHandler:      NewSongsHandler(deps),
		statisticsHandler: NewStatisticsHandler(deps),
		artistsHandler:    NewArtistsHandler(deps),
		corsOrigins:       []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r. Global middleware is installed
// here, so r must not have served a request yet.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Route("/api", func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.Limit(s.rateLimit, s.rateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusTooManyRequests, "rate_limited", errors.New("too many requests"))
				}),
			))
		}

		r.Route("/songs", func(r chi.Router) {
			r.Get("/", s.songsHandler.HandleList)
			r.Get("/by-title/{slug}", s.songsHandler.HandleBySlug)
			r.Get("/statistics/dropped-songs", s.statisticsHandler.HandleDropped)
			r.Get("/statistics/all-time", s.statisticsHandler.HandleEveryEdition)
			r.Get("/{id}", s.songsHandler.HandleDetail)
			r.Get("/{id}/history", s.songsHandler.HandleHistory)
		})

		r.Route("/statistics", func(r chi.Router) {
			r.Get("/new-entries/{year}", s.statisticsHandler.HandleNewEntries)
			r.Get("/lost-entries/{year}", s.statisticsHandler.HandleLostEntries)
			r.Get("/reentries/{year}", s.statisticsHandler.HandleReentries)
			r.Get("/unchanged/{year}", s.statisticsHandler.HandleUnchanged)
			r.Get("/summary/{year}", s.statisticsHandler.HandleSummary)
		})

		r.Route("/artists", func(r chi.Router) {
			r.Get("/all-with-counts", s.artistsHandler.HandleList)
			r.Get("/{id}", s.artistsHandler.HandleDetail)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", errors.New("no such route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps a facade error onto a status. Only the cause of an
// invalid-argument or not-found error is shown to the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", cause(err))
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", cause(err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", errors.New("internal error"))
	}
}

func cause(err error) error {
	var e *errkind.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err
	}
	return nil
}
