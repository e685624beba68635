package rest

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
	"github.com/ewilliams-labs/chorus/internal/worker"
)

// maxRequestBytes caps the whole multipart body: every accepted file plus some
// headroom for the text fields.
const maxRequestBytes = domain.MaxUploadFiles*domain.MaxFileBytes + 1<<20

// ListSongs handles GET /songs
func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.catalog.List(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

// GetSong handles GET /songs/{id}
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// CreateSong handles POST /songs. The body is multipart form data: text
// fields plus up to one file each under the "song" and "thumbnail" fields.
func (h *Handler) CreateSong(w http.ResponseWriter, r *http.Request) {
	uploads, form, err := h.parseUploadForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	meta := domain.SongMetadata{
		Name:    form.Get("name"),
		Lyrics:  form.Get("lyrics"),
		Artists: form.Get("artists"),
	}

	song, err := h.catalog.Ingest(r.Context(), meta, uploads)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.enqueueAnalysis(song)

	// The raw record stays internal; clients re-read through the list or
	// detail endpoints.
	w.Header().Set("Location", "/songs/"+song.ID)
	writeSuccess(w, http.StatusCreated, "Song added successfully")
}

// UpdateSong handles PUT /songs/{id}. Absent form fields leave the stored
// values untouched; attached files replace the corresponding asset.
func (h *Handler) UpdateSong(w http.ResponseWriter, r *http.Request) {
	uploads, form, err := h.parseUploadForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upd := domain.SongUpdate{
		Name:    formPtr(form, "name"),
		Lyrics:  formPtr(form, "lyrics"),
		Artists: formPtr(form, "artists"),
	}

	id := r.PathValue("id")
	if err := h.catalog.UpdateSong(r.Context(), id, upd, uploads); err != nil {
		h.writeDomainError(w, err)
		return
	}

	for _, u := range uploads {
		if u.Role == domain.RoleSong {
			if song, err := h.catalog.Get(r.Context(), id); err == nil {
				h.enqueueAnalysis(song)
			}
			break
		}
	}

	writeSuccess(w, http.StatusOK, "Song updated successfully")
}

// DeleteSong handles DELETE /songs/{id}
func (h *Handler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Song deleted successfully")
}

// ListAssets handles GET /assets, an admin view of everything in the blob
// store.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	objects, err := h.catalog.ListAssets(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, objects)
}

// ServeAsset handles GET /song/{file} and GET /thumbnail/{file}, streaming the
// object from whichever blob backend is configured.
func (h *Handler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	role, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	key := role + "/" + r.PathValue("file")

	rc, err := h.blobs.Open(r.Context(), key)
	if err != nil {
		h.writeDomainError(w, fmt.Errorf("%w: %s", domain.ErrNotFound, key))
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	io.Copy(w, rc)
}

// parseUploadForm reads the multipart body into memory-backed uploads. The
// reader is capped so an oversized request fails fast instead of filling the
// disk; per-file limits are still the domain validator's job.
func (h *Handler) parseUploadForm(w http.ResponseWriter, r *http.Request) ([]domain.Upload, url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart body: %v", err)
	}

	var uploads []domain.Upload
	for field, role := range map[string]domain.AssetRole{
		"song":      domain.RoleSong,
		"thumbnail": domain.RoleThumbnail,
	} {
		for _, header := range r.MultipartForm.File[field] {
			u, err := readUpload(role, header)
			if err != nil {
				return nil, nil, err
			}
			uploads = append(uploads, u)
		}
	}
	return uploads, url.Values(r.MultipartForm.Value), nil
}

func readUpload(role domain.AssetRole, header *multipart.FileHeader) (domain.Upload, error) {
	f, err := header.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("could not open uploaded file %q: %v", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("could not read uploaded file %q: %v", header.Filename, err)
	}

	encoding := header.Header.Get("Content-Transfer-Encoding")
	if encoding == "" {
		encoding = "7bit"
	}

	return domain.Upload{
		Role:         role,
		OriginalName: header.Filename,
		Encoding:     encoding,
		MIMEType:     header.Header.Get("Content-Type"),
		Data:         data,
	}, nil
}

// enqueueAnalysis hands the stored audio to the background pool for duration
// probing.
func (h *Handler) enqueueAnalysis(song domain.Song) {
	if h.pool == nil || song.SongAsset == nil {
		return
	}
	h.pool.Submit(worker.Job{SongID: song.ID, StorageKey: song.SongAsset.StorageKey})
}

func formPtr(form url.Values, key string) *string {
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}
