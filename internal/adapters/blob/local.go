// Package blob provides the interchangeable file storage backends: a local
// role-partitioned directory layout and a remote blob gateway client.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
	"github.com/ewilliams-labs/chorus/internal/core/ports"
)

// Local stores objects under a root directory, one subdirectory per asset
// role (songs/, thumbnails/), matching the public static routes /song and
// /thumbnail.
type Local struct {
	root string
}

// NewLocal ensures the role directories exist under root.
func NewLocal(root string) (*Local, error) {
	for _, dir := range []string{"songs", "thumbnails"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create %s dir: %v", domain.ErrStorage, dir, err)
		}
	}
	return &Local{root: root}, nil
}

// Dir returns the on-disk directory serving the given role.
func (l *Local) Dir(role domain.AssetRole) string {
	return filepath.Join(l.root, string(role)+"s")
}

// resolve maps a storage key like "song/tune-17.mp3" onto the filesystem,
// rejecting anything that would escape the root.
func (l *Local) resolve(key string) (string, error) {
	role, name, ok := strings.Cut(key, "/")
	if !ok || name == "" || path.Clean(name) != name || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: invalid storage key %q", domain.ErrStorage, key)
	}
	return filepath.Join(l.root, role+"s", name), nil
}

func (l *Local) Store(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	target, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create %s: %v", domain.ErrStorage, key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("%w: failed to write %s: %v", domain.ErrStorage, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("%w: failed to flush %s: %v", domain.ErrStorage, key, err)
	}
	return l.PublicURL(key), nil
}

func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	target, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", domain.ErrStorage, key, err)
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	target, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", domain.ErrStorage, key, err)
	}
	return nil
}

func (l *Local) List(ctx context.Context) ([]ports.ObjectInfo, error) {
	objects := []ports.ObjectInfo{}
	for _, role := range []domain.AssetRole{domain.RoleSong, domain.RoleThumbnail} {
		entries, err := os.ReadDir(l.Dir(role))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list %s dir: %v", domain.ErrStorage, role, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return nil, fmt.Errorf("%w: failed to stat %s: %v", domain.ErrStorage, entry.Name(), err)
			}
			objects = append(objects, ports.ObjectInfo{
				Key:  string(role) + "/" + entry.Name(),
				Size: info.Size(),
			})
		}
	}
	return objects, nil
}

// PublicURL maps a key onto the static serving path, e.g. song/x.mp3 ->
// /song/x.mp3.
func (l *Local) PublicURL(key string) string {
	return "/" + key
}
