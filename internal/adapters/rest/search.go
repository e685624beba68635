package rest

import (
	"net/http"
)

// SearchSongs handles GET /search?text=...
func (h *Handler) SearchSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.search.Songs(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}
