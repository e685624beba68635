package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
	"github.com/ewilliams-labs/chorus/internal/core/ports"
)

// Gateway stores objects in a remote blob store behind an HTTP gateway.
// Objects live at <base>/<container>/<key>; a bearer token authorizes writes.
type Gateway struct {
	baseURL    string
	container  string
	token      string
	httpClient *http.Client
}

func NewGateway(baseURL, container, token string) *Gateway {
	return &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		container: container,
		token:     token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *Gateway) objectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return g.baseURL + "/" + g.container + "/" + strings.Join(segments, "/")
}

func (g *Gateway) do(req *http.Request) (*http.Response, error) {
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	return g.httpClient.Do(req)
}

func (g *Gateway) Store(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.objectURL(key), r)
	if err != nil {
		return "", fmt.Errorf("%w: build upload request: %v", domain.ErrStorage, err)
	}
	req.ContentLength = size
	// The upstream store tags thumbnails with their content type so browsers
	// render them directly.
	if strings.HasPrefix(key, string(domain.RoleThumbnail)+"/") && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := g.do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", domain.ErrStorage, key, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: upload %s: status %d", domain.ErrStorage, key, resp.StatusCode)
	}
	return g.PublicURL(key), nil
}

func (g *Gateway) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.objectURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build fetch request: %v", domain.ErrStorage, err)
	}
	resp, err := g.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrStorage, key, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: fetch %s: status %d", domain.ErrStorage, key, resp.StatusCode)
	}
	return resp.Body, nil
}

func (g *Gateway) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, g.objectURL(key), nil)
	if err != nil {
		return fmt.Errorf("%w: build delete request: %v", domain.ErrStorage, err)
	}
	resp, err := g.do(req)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", domain.ErrStorage, key, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: delete %s: status %d", domain.ErrStorage, key, resp.StatusCode)
	}
	return nil
}

func (g *Gateway) List(ctx context.Context) ([]ports.ObjectInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/"+g.container, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build list request: %v", domain.ErrStorage, err)
	}
	resp, err := g.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: list container: %v", domain.ErrStorage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list container: status %d", domain.ErrStorage, resp.StatusCode)
	}
	var objects []ports.ObjectInfo
	if err := json.NewDecoder(resp.Body).Decode(&objects); err != nil {
		return nil, fmt.Errorf("%w: decode container listing: %v", domain.ErrStorage, err)
	}
	return objects, nil
}

func (g *Gateway) PublicURL(key string) string {
	return g.objectURL(key)
}
