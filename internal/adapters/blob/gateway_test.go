package blob

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

// fakeBlobServer is a minimal in-memory blob gateway.
type fakeBlobServer struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	tokens  []string
}

func newFakeBlobServer() *fakeBlobServer {
	return &fakeBlobServer{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeBlobServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.tokens = append(f.tokens, r.Header.Get("Authorization"))

		key := strings.TrimPrefix(r.URL.Path, "/music/")
		switch r.Method {
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			f.objects[key] = body
			f.types[key] = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			if r.URL.Path == "/music" {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`[{"key":"song/a.mp3","size":3}]`))
				return
			}
			body, ok := f.objects[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(body)
		case http.MethodDelete:
			if _, ok := f.objects[key]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(f.objects, key)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func TestGateway_StoreTagsThumbnailContentType(t *testing.T) {
	fake := newFakeBlobServer()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	g := NewGateway(srv.URL, "music", "secret")
	ctx := context.Background()

	if _, err := g.Store(ctx, "thumbnail/a.png", "image/png", strings.NewReader("png"), 3); err != nil {
		t.Fatalf("store thumbnail: %v", err)
	}
	if _, err := g.Store(ctx, "song/a.mp3", "audio/mpeg", strings.NewReader("mp3"), 3); err != nil {
		t.Fatalf("store song: %v", err)
	}

	if got := fake.types["thumbnail/a.png"]; got != "image/png" {
		t.Fatalf("thumbnail should carry content type, got %q", got)
	}
	if got := fake.types["song/a.mp3"]; strings.Contains(got, "audio") {
		t.Fatalf("song uploads are not content-type tagged, got %q", got)
	}
	for _, tok := range fake.tokens {
		if tok != "Bearer secret" {
			t.Fatalf("expected bearer token on every request, got %q", tok)
		}
	}
}

func TestGateway_OpenAndDelete(t *testing.T) {
	fake := newFakeBlobServer()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	g := NewGateway(srv.URL, "music", "")
	ctx := context.Background()

	if _, err := g.Store(ctx, "song/a.mp3", "audio/mpeg", strings.NewReader("mp3"), 3); err != nil {
		t.Fatalf("store: %v", err)
	}

	rc, err := g.Open(ctx, "song/a.mp3")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "mp3" {
		t.Fatalf("read back %q", body)
	}

	if err := g.Delete(ctx, "song/a.mp3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := g.Open(ctx, "song/a.mp3"); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage for missing object, got %v", err)
	}
	if err := g.Delete(ctx, "song/a.mp3"); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage for double delete, got %v", err)
	}
}

func TestGateway_List(t *testing.T) {
	fake := newFakeBlobServer()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	g := NewGateway(srv.URL, "music", "")
	objects, err := g.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 1 || objects[0].Key != "song/a.mp3" || objects[0].Size != 3 {
		t.Fatalf("unexpected listing %+v", objects)
	}
}

func TestGateway_StoreFailureSurfacesStorageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "music", "")
	_, err := g.Store(context.Background(), "song/a.mp3", "audio/mpeg", strings.NewReader("x"), 1)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}
