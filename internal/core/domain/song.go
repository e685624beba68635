package domain

import "strings"

// AssetDescriptor records a stored file embedded in a Song. It has no identity or
// lifecycle of its own.
type AssetDescriptor struct {
	Role         AssetRole `json:"fieldname"`
	OriginalName string    `json:"originalname"`
	Encoding     string    `json:"encoding,omitempty"`
	MIMEType     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	StorageKey   string    `json:"blobname"`
}

// Song is a catalog entry. Name is unique across all songs.
type Song struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Lyrics         string           `json:"lyrics,omitempty"`
	Artists        string           `json:"artists,omitempty"`
	DurationSec    float64          `json:"duration_sec,omitempty"`
	SongAsset      *AssetDescriptor `json:"songdetails,omitempty"`
	ThumbnailAsset *AssetDescriptor `json:"thumbnaildetails,omitempty"`
}

// SongMetadata is the textual part of an ingestion or update request.
type SongMetadata struct {
	Name    string
	Lyrics  string
	Artists string
}

// Validate checks the metadata before any file is classified or stored.
func (m SongMetadata) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrInvalidInput
	}
	return nil
}

// SongUpdate carries a partial update. Nil fields are left untouched; a non-nil
// descriptor replaces the stored one wholesale.
type SongUpdate struct {
	Name           *string
	Lyrics         *string
	Artists        *string
	SongAsset      *AssetDescriptor
	ThumbnailAsset *AssetDescriptor
}
