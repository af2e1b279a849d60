package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/top2000/internal/domain/model"
)

// SongDependencies defines the song read operations.
type SongDependencies interface {
	Songs(ctx context.Context, page, pageSize int) (model.Page, error)
	Song(ctx context.Context, id int) (model.SongDetail, error)
	SongBySlug(ctx context.Context, slug string) (model.SongDetail, error)
	SongHistory(ctx context.Context, id int) ([]model.HistoryPoint, error)
}

// SongsHandler serves /api/songs.
type SongsHandler struct {
	deps SongDependencies
}

// NewSongsHandler creates a new songs handler.
func NewSongsHandler(deps SongDependencies) *SongsHandler {
	return &SongsHandler{deps: deps}
}

// HandleList handles GET /api/songs?page&pageSize. Out of range values are
// corrected by the ranking; only non-numeric values are rejected.
func (h *SongsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		badRequest(w, err)
		return
	}
	size, err := queryInt(r, "pageSize", 0)
	if err != nil {
		badRequest(w, err)
		return
	}

	out, err := h.deps.Songs(r.Context(), page, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDetail handles GET /api/songs/{id}.
func (h *SongsHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	out, err := h.deps.Song(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleBySlug handles GET /api/songs/by-title/{slug}. The segment may still
// be percent-encoded; the ranking unescapes it.
func (h *SongsHandler) HandleBySlug(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.SongBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleHistory handles GET /api/songs/{id}/history.
func (h *SongsHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	out, err := h.deps.SongHistory(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
