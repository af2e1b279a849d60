package api

import (
	"context"
	"net/http"

	"github.com/okian/top2000/internal/domain/model"
)

// ArtistDependencies defines the artist read operations.
type ArtistDependencies interface {
	Artists(ctx context.Context) ([]model.ArtistSongCount, error)
	Artist(ctx context.Context, id int) (model.ArtistDetail, error)
}

// ArtistsHandler serves /api/artists.
type ArtistsHandler struct {
	deps ArtistDependencies
}

// NewArtistsHandler creates a new artists handler.
func NewArtistsHandler(deps ArtistDependencies) *ArtistsHandler {
	return &ArtistsHandler{deps: deps}
}

// HandleList handles GET /api/artists/all-with-counts.
func (h *ArtistsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Artists(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDetail handles GET /api/artists/{id}.
func (h *ArtistsHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	out, err := h.deps.Artist(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
