package rest

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/chorus/internal/core/ports"
	"github.com/ewilliams-labs/chorus/internal/core/services"
	"github.com/ewilliams-labs/chorus/internal/worker"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	catalog   *services.Catalog
	playlists *services.Playlists
	search    *services.Search
	blobs     ports.BlobStore
	pool      *worker.Pool
	limiter   *rate.Limiter
	logger    *log.Logger
	router    *http.ServeMux
}

// NewHandler initializes the HTTP adapter and sets up routes. pool may be nil
// when background analysis is disabled.
func NewHandler(catalog *services.Catalog, playlists *services.Playlists, search *services.Search, blobs ports.BlobStore, pool *worker.Pool, logger *log.Logger) *Handler {
	h := &Handler{
		catalog:   catalog,
		playlists: playlists,
		search:    search,
		blobs:     blobs,
		pool:      pool,
		limiter:   newUploadLimiter(30, 10),
		logger:    logger.With("adapter", "rest"),
		router:    http.NewServeMux(),
	}

	h.routes()

	return h
}

// SetUploadLimit replaces the default upload limiter. perMinute <= 0 disables
// throttling.
func (h *Handler) SetUploadLimit(perMinute, burst int) {
	h.limiter = newUploadLimiter(perMinute, burst)
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logged(h.router).ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health Check
	h.router.HandleFunc("GET /health", h.HealthCheck)

	// Song Catalog
	h.router.HandleFunc("GET /songs", h.withCaller(h.ListSongs))
	h.router.HandleFunc("POST /songs", h.adminOnly(h.throttled(h.CreateSong)))
	h.router.HandleFunc("GET /songs/{id}", h.withCaller(h.GetSong))
	h.router.HandleFunc("PUT /songs/{id}", h.adminOnly(h.throttled(h.UpdateSong)))
	h.router.HandleFunc("DELETE /songs/{id}", h.adminOnly(h.DeleteSong))
	h.router.HandleFunc("GET /assets", h.adminOnly(h.ListAssets))

	// Playlist Management
	h.router.HandleFunc("GET /playlists", h.withCaller(h.ListPlaylists))
	h.router.HandleFunc("POST /playlists", h.withCaller(h.CreatePlaylist))
	h.router.HandleFunc("GET /playlists/public", h.PublicPlaylists)
	h.router.HandleFunc("GET /playlists/{id}", h.withCaller(h.GetPlaylist))
	h.router.HandleFunc("PUT /playlists/{id}", h.withCaller(h.UpdatePlaylist))
	h.router.HandleFunc("DELETE /playlists/{id}", h.withCaller(h.DeletePlaylist))

	// Bulk Membership
	h.router.HandleFunc("POST /songs/{id}/playlists", h.withCaller(h.AddSongToPlaylists))

	// Search
	h.router.HandleFunc("GET /search", h.withCaller(h.SearchSongs))

	// Stored media, served straight from the blob store.
	h.router.HandleFunc("GET /song/{file}", h.ServeAsset)
	h.router.HandleFunc("GET /thumbnail/{file}", h.ServeAsset)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "message": "Chorus is live 🎶"})
}
