package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("domain: not found")
	ErrDuplicateName = errors.New("domain: duplicate name")
	ErrForbidden     = errors.New("domain: forbidden")
	ErrInvalidInput  = errors.New("domain: invalid input")

	ErrUnsupportedMediaType = errors.New("domain: unsupported media type")

	// ErrStorage covers blob backend I/O failures.
	ErrStorage = errors.New("domain: storage failure")
	// ErrAssetUpload is returned when a file could not be persisted during ingestion.
	ErrAssetUpload = errors.New("domain: asset upload failed")
)

// UnsupportedMediaTypeError reports a role/MIME combination outside the whitelists,
// carrying the offending MIME type.
type UnsupportedMediaTypeError struct {
	Role     AssetRole
	MIMEType string
}

func (e UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("mime type %q not supported for field %q", e.MIMEType, e.Role)
}

func (e UnsupportedMediaTypeError) Is(target error) bool {
	return target == ErrUnsupportedMediaType
}
