package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// AssetRole is the declared purpose of an uploaded file.
type AssetRole string

const (
	RoleSong      AssetRole = "song"
	RoleThumbnail AssetRole = "thumbnail"
)

const (
	// MaxUploadFiles is the number of files accepted per ingestion request.
	MaxUploadFiles = 2
	// MaxFileBytes is the per-file size ceiling (6 MiB).
	MaxFileBytes = 6 << 20
)

var (
	audioMIMETypes = map[string]bool{
		"audio/mp3":  true,
		"audio/mpeg": true,
	}
	imageMIMETypes = map[string]bool{
		"image/jpeg": true,
		"image/webp": true,
		"image/png":  true,
	}
)

// Upload is one incoming file, already buffered by the transport layer.
type Upload struct {
	Role         AssetRole
	OriginalName string
	Encoding     string
	MIMEType     string
	Data         []byte
}

// ValidateUpload classifies a file by declared role and MIME type. Only the
// song/audio and thumbnail/image pairings are accepted.
func ValidateUpload(role AssetRole, mimeType string) error {
	switch role {
	case RoleSong:
		if audioMIMETypes[mimeType] {
			return nil
		}
	case RoleThumbnail:
		if imageMIMETypes[mimeType] {
			return nil
		}
	}
	return UnsupportedMediaTypeError{Role: role, MIMEType: mimeType}
}

// ValidateUploads applies request-level limits and per-file classification to a
// batch of incoming files.
func ValidateUploads(uploads []Upload) error {
	if len(uploads) > MaxUploadFiles {
		return fmt.Errorf("%w: at most %d files per request", ErrInvalidInput, MaxUploadFiles)
	}
	for _, u := range uploads {
		if len(u.Data) > MaxFileBytes {
			return fmt.Errorf("%w: file %q exceeds %d bytes", ErrInvalidInput, u.OriginalName, MaxFileBytes)
		}
		if err := ValidateUpload(u.Role, u.MIMEType); err != nil {
			return err
		}
	}
	return nil
}

// Descriptor builds the asset descriptor persisted on the song record once the
// file has been stored under key.
func (u Upload) Descriptor(key string) AssetDescriptor {
	return AssetDescriptor{
		Role:         u.Role,
		OriginalName: u.OriginalName,
		Encoding:     u.Encoding,
		MIMEType:     u.MIMEType,
		Size:         int64(len(u.Data)),
		StorageKey:   key,
	}
}

// NewStorageKey derives the blob name for an upload:
// <role>/<basename>-<unix-millis><ext>. The timestamp makes collisions
// practically impossible without a coordination step.
func NewStorageKey(u Upload, now time.Time) string {
	ext := filepath.Ext(u.OriginalName)
	base := filepath.Base(u.OriginalName)
	base = base[:len(base)-len(ext)]
	return fmt.Sprintf("%s/%s-%d%s", u.Role, base, now.UnixMilli(), ext)
}
