package api

import (
	"context"
	"net/http"

	"github.com/okian/top2000/internal/domain/model"
)

// StatisticsDependencies defines the year-over-year report operations.
type StatisticsDependencies interface {
	CurrentYear() int
	DroppedSongs(ctx context.Context, year int) ([]model.DroppedSong, error)
	NewEntries(ctx context.Context, year int) ([]model.YearEntry, error)
	LostEntries(ctx context.Context, year int) ([]model.LostEntry, error)
	Reentries(ctx context.Context, year int) ([]model.YearEntry, error)
	Unchanged(ctx context.Context, year int) ([]model.YearEntry, error)
	YearSummary(ctx context.Context, year int) (model.YearSummary, error)
	EveryEdition(ctx context.Context) ([]model.EditionSong, error)
}

// StatisticsHandler serves the report endpoints.
type StatisticsHandler struct {
	deps StatisticsDependencies
}

// NewStatisticsHandler creates a new statistics handler.
func NewStatisticsHandler(deps StatisticsDependencies) *StatisticsHandler {
	return &StatisticsHandler{deps: deps}
}

// HandleDropped handles GET /api/songs/statistics/dropped-songs?year.
// The year defaults to the current edition.
func (h *StatisticsHandler) HandleDropped(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", h.deps.CurrentYear())
	if err != nil {
		badRequest(w, err)
		return
	}
	respond(w, r, year, h.deps.DroppedSongs)
}

// HandleEveryEdition handles GET /api/songs/statistics/all-time.
func (h *StatisticsHandler) HandleEveryEdition(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.EveryEdition(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleNewEntries handles GET /api/statistics/new-entries/{year}.
func (h *StatisticsHandler) HandleNewEntries(w http.ResponseWriter, r *http.Request) {
	yearReport(w, r, h.deps.NewEntries)
}

// HandleLostEntries handles GET /api/statistics/lost-entries/{year}.
func (h *StatisticsHandler) HandleLostEntries(w http.ResponseWriter, r *http.Request) {
	yearReport(w, r, h.deps.LostEntries)
}

// HandleReentries handles GET /api/statistics/reentries/{year}.
func (h *StatisticsHandler) HandleReentries(w http.ResponseWriter, r *http.Request) {
	yearReport(w, r, h.deps.Reentries)
}

// HandleUnchanged handles GET /api/statistics/unchanged/{year}.
func (h *StatisticsHandler) HandleUnchanged(w http.ResponseWriter, r *http.Request) {
	yearReport(w, r, h.deps.Unchanged)
}

// HandleSummary handles GET /api/statistics/summary/{year}.
func (h *StatisticsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	yearReport(w, r, h.deps.YearSummary)
}

func yearReport[T any](w http.ResponseWriter, r *http.Request, fn func(context.Context, int) (T, error)) {
	year, err := pathInt(r, "year")
	if err != nil {
		badRequest(w, err)
		return
	}
	respond(w, r, year, fn)
}

func respond[T any](w http.ResponseWriter, r *http.Request, year int, fn func(context.Context, int) (T, error)) {
	out, err := fn(r.Context(), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
