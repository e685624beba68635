package rest

import (
	"encoding/json"
	"net/http"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
	"github.com/ewilliams-labs/chorus/internal/core/services"
)

type createPlaylistRequest struct {
	Name  string   `json:"name"`
	Color string   `json:"color"`
	Songs []string `json:"songs"`
}

type updatePlaylistRequest struct {
	Name       *string  `json:"name"`
	Color      *string  `json:"color"`
	Visibility *string  `json:"type"`
	Songs      []string `json:"songs"`
}

type addToPlaylistsRequest struct {
	Playlists []string `json:"playlists"`
}

// ListPlaylists handles GET /playlists. Admins see every public playlist,
// everyone else their own.
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r.Context())
	lists, err := h.playlists.List(r.Context(), caller)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// PublicPlaylists handles GET /playlists/public
func (h *Handler) PublicPlaylists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.playlists.Public(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// GetPlaylist handles GET /playlists/{id}
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// CreatePlaylist handles POST /playlists
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	caller, _ := callerFrom(r.Context())
	playlist, err := h.playlists.Create(r.Context(), caller, services.PlaylistInput{
		Name:  req.Name,
		Color: req.Color,
		Songs: req.Songs,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/playlists/"+playlist.ID)
	writeSuccess(w, http.StatusCreated, "Playlist created successfully")
}

// UpdatePlaylist handles PUT /playlists/{id}
func (h *Handler) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req updatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	upd := domain.PlaylistUpdate{
		Name:  req.Name,
		Color: req.Color,
		Songs: req.Songs,
	}
	if req.Visibility != nil {
		v := domain.Visibility(*req.Visibility)
		upd.Visibility = &v
	}

	caller, _ := callerFrom(r.Context())
	if err := h.playlists.Update(r.Context(), caller, r.PathValue("id"), upd); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Playlist updated successfully")
}

// DeletePlaylist handles DELETE /playlists/{id}
func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r.Context())
	if err := h.playlists.Delete(r.Context(), caller, r.PathValue("id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Playlist deleted successfully")
}

// AddSongToPlaylists handles POST /songs/{id}/playlists. The bulk add always
// answers 200 once the song itself checks out; per-playlist problems come back
// in the failed list instead of failing the request.
func (h *Handler) AddSongToPlaylists(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req addToPlaylistsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	caller, _ := callerFrom(r.Context())
	failed, err := h.playlists.AddToPlaylists(r.Context(), caller, r.PathValue("id"), req.Playlists)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successEnvelope{Success: successBody{
		Message: "Song added to playlists",
		Failed:  failed,
	}})
}
