package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

type mockPlaylistRepo struct {
	mu        sync.Mutex
	playlists map[string]domain.Playlist
	addErr    error
	addCalls  [][2]string
}

func newMockPlaylistRepo() *mockPlaylistRepo {
	return &mockPlaylistRepo{playlists: map[string]domain.Playlist{}}
}

func (m *mockPlaylistRepo) FindByOwner(ctx context.Context, ownerID string) ([]domain.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Playlist{}
	for _, p := range m.playlists {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlaylistRepo) FindPublic(ctx context.Context) ([]domain.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Playlist{}
	for _, p := range m.playlists {
		if p.Visibility == domain.VisibilityPublic {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlaylistRepo) FindByID(ctx context.Context, id string) (domain.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[id]
	if !ok {
		return domain.Playlist{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPlaylistRepo) Insert(ctx context.Context, p domain.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.playlists {
		if existing.OwnerID == p.OwnerID && existing.Name == p.Name {
			return domain.ErrDuplicateName
		}
	}
	m.playlists[p.ID] = p
	return nil
}

func (m *mockPlaylistRepo) Update(ctx context.Context, id string, upd domain.PlaylistUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.playlists[id]
	if !ok {
		return domain.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Color != nil {
		p.Color = *upd.Color
	}
	if upd.Visibility != nil {
		p.Visibility = *upd.Visibility
	}
	if upd.Songs != nil {
		p.Songs = upd.Songs
	}
	m.playlists[id] = p
	return nil
}

func (m *mockPlaylistRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.playlists[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.playlists, id)
	return nil
}

func (m *mockPlaylistRepo) AddSong(ctx context.Context, playlistID, songID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.addCalls = append(m.addCalls, [2]string{playlistID, songID})
	p, ok := m.playlists[playlistID]
	if !ok {
		return domain.ErrNotFound
	}
	if !p.HasSong(songID) {
		p.Songs = append(p.Songs, songID)
		m.playlists[playlistID] = p
	}
	return nil
}

func seedMockSong(repo *mockSongRepo, id, name string) {
	repo.songs[id] = domain.Song{ID: id, Name: name}
}

func TestPlaylists_CreateAssignsVisibilityAndOwner(t *testing.T) {
	repo := newMockPlaylistRepo()
	svc := NewPlaylists(repo, newMockSongRepo(), testLogger())
	ctx := context.Background()

	user := domain.Caller{UserID: "u1"}
	p, err := svc.Create(ctx, user, PlaylistInput{Name: "Mine", Songs: []string{"s1", "s1", "s2"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Visibility != domain.VisibilityPrivate || p.OwnerID != "u1" {
		t.Fatalf("user playlist should be private and owned, got %+v", p)
	}
	if len(p.Songs) != 2 {
		t.Fatalf("songs should be deduplicated, got %v", p.Songs)
	}

	admin := domain.Caller{UserID: "a1", Admin: true}
	p2, err := svc.Create(ctx, admin, PlaylistInput{Name: "Editor Picks"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p2.Visibility != domain.VisibilityPublic {
		t.Fatalf("admin playlist should be public, got %v", p2.Visibility)
	}
}

func TestPlaylists_CreateValidation(t *testing.T) {
	svc := NewPlaylists(newMockPlaylistRepo(), newMockSongRepo(), testLogger())

	_, err := svc.Create(context.Background(), domain.Caller{UserID: "u1"}, PlaylistInput{Name: "  "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
}

func TestPlaylists_CreateDuplicatePerOwner(t *testing.T) {
	repo := newMockPlaylistRepo()
	svc := NewPlaylists(repo, newMockSongRepo(), testLogger())
	ctx := context.Background()
	caller := domain.Caller{UserID: "u1"}

	if _, err := svc.Create(ctx, caller, PlaylistInput{Name: "Mix"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, caller, PlaylistInput{Name: "Mix"}); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if len(repo.playlists) != 1 {
		t.Fatalf("duplicate must not create a second record, got %d", len(repo.playlists))
	}
}

func TestPlaylists_UpdateEnforcesAccess(t *testing.T) {
	tests := []struct {
		name    string
		caller  domain.Caller
		wantErr error
	}{
		{name: "owner may update private", caller: domain.Caller{UserID: "u1"}},
		{name: "stranger forbidden", caller: domain.Caller{UserID: "u2"}, wantErr: domain.ErrForbidden},
		{name: "admin forbidden on foreign private", caller: domain.Caller{UserID: "a1", Admin: true}, wantErr: domain.ErrForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockPlaylistRepo()
			repo.playlists["p1"] = domain.Playlist{ID: "p1", Name: "Mix", Visibility: domain.VisibilityPrivate, OwnerID: "u1"}
			svc := NewPlaylists(repo, newMockSongRepo(), testLogger())

			name := "Renamed"
			err := svc.Update(context.Background(), tc.caller, "p1", domain.PlaylistUpdate{Name: &name})
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("update: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPlaylists_UpdatePublicRequiresAdmin(t *testing.T) {
	repo := newMockPlaylistRepo()
	repo.playlists["p1"] = domain.Playlist{ID: "p1", Name: "Picks", Visibility: domain.VisibilityPublic, OwnerID: "a1"}
	svc := NewPlaylists(repo, newMockSongRepo(), testLogger())
	ctx := context.Background()

	name := "Renamed"
	if err := svc.Update(ctx, domain.Caller{UserID: "u1"}, "p1", domain.PlaylistUpdate{Name: &name}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-admin mutation of public playlist must be Forbidden, got %v", err)
	}
	if err := svc.Update(ctx, domain.Caller{UserID: "a2", Admin: true}, "p1", domain.PlaylistUpdate{Name: &name}); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	// Visibility can change on update, unlike on insert.
	private := domain.VisibilityPrivate
	if err := svc.Update(ctx, domain.Caller{UserID: "a2", Admin: true}, "p1", domain.PlaylistUpdate{Visibility: &private}); err != nil {
		t.Fatalf("visibility update: %v", err)
	}
	if got := repo.playlists["p1"].Visibility; got != domain.VisibilityPrivate {
		t.Fatalf("visibility not updated, got %v", got)
	}
}

func TestPlaylists_DeleteRules(t *testing.T) {
	repo := newMockPlaylistRepo()
	repo.playlists["priv"] = domain.Playlist{ID: "priv", Name: "Mine", Visibility: domain.VisibilityPrivate, OwnerID: "u1"}
	repo.playlists["pub"] = domain.Playlist{ID: "pub", Name: "Picks", Visibility: domain.VisibilityPublic, OwnerID: "a1"}
	svc := NewPlaylists(repo, newMockSongRepo(), testLogger())
	ctx := context.Background()

	if err := svc.Delete(ctx, domain.Caller{UserID: "u2"}, "priv"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger delete must be Forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, domain.Caller{UserID: "u1"}, "priv"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(ctx, domain.Caller{UserID: "a2", Admin: true}, "pub"); err != nil {
		t.Fatalf("admin delete of public: %v", err)
	}
	if err := svc.Delete(ctx, domain.Caller{UserID: "u1"}, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlaylists_AddToPlaylistsValidation(t *testing.T) {
	songs := newMockSongRepo()
	svc := NewPlaylists(newMockPlaylistRepo(), songs, testLogger())
	ctx := context.Background()
	caller := domain.Caller{UserID: "u1"}

	if _, err := svc.AddToPlaylists(ctx, caller, "missing", []string{"p1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing song, got %v", err)
	}

	seedMockSong(songs, "s1", "Song A")
	if _, err := svc.AddToPlaylists(ctx, caller, "s1", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty playlist list, got %v", err)
	}
}

func TestPlaylists_AddToPlaylistsPartialFailure(t *testing.T) {
	songs := newMockSongRepo()
	seedMockSong(songs, "s1", "Song A")

	repo := newMockPlaylistRepo()
	repo.playlists["mine"] = domain.Playlist{ID: "mine", Name: "Mine", Visibility: domain.VisibilityPrivate, OwnerID: "u1"}
	repo.playlists["theirs"] = domain.Playlist{ID: "theirs", Name: "Theirs", Visibility: domain.VisibilityPrivate, OwnerID: "u2"}

	svc := NewPlaylists(repo, songs, testLogger())
	failed, err := svc.AddToPlaylists(context.Background(), domain.Caller{UserID: "u1"}, "s1", []string{"mine", "missing", "theirs"})
	if err != nil {
		t.Fatalf("bulk add should not escalate per-item failures: %v", err)
	}

	reasons := map[string]string{}
	for _, f := range failed {
		reasons[f.ID] = f.Reason
	}
	if len(failed) != 2 {
		t.Fatalf("expected 2 failures, got %+v", failed)
	}
	if reasons["missing"] != "does not exist" {
		t.Fatalf("missing playlist reason = %q", reasons["missing"])
	}
	if reasons["theirs"] != "does not have access" {
		t.Fatalf("foreign playlist reason = %q", reasons["theirs"])
	}

	// The valid playlist was still updated.
	got, _ := repo.FindByID(context.Background(), "mine")
	if !got.HasSong("s1") {
		t.Fatalf("valid playlist should contain the song, got %v", got.Songs)
	}
	if repo.playlists["theirs"].HasSong("s1") {
		t.Fatal("foreign playlist must not be touched")
	}
}

func TestPlaylists_AddToPlaylistsIdempotent(t *testing.T) {
	songs := newMockSongRepo()
	seedMockSong(songs, "s1", "Song A")

	repo := newMockPlaylistRepo()
	repo.playlists["p1"] = domain.Playlist{ID: "p1", Name: "Mix", Visibility: domain.VisibilityPrivate, OwnerID: "u1"}
	svc := NewPlaylists(repo, songs, testLogger())
	caller := domain.Caller{UserID: "u1"}

	for i := 0; i < 2; i++ {
		failed, err := svc.AddToPlaylists(context.Background(), caller, "s1", []string{"p1"})
		if err != nil || len(failed) != 0 {
			t.Fatalf("add attempt %d: failed=%v err=%v", i+1, failed, err)
		}
	}
	got, _ := repo.FindByID(context.Background(), "p1")
	if len(got.Songs) != 1 {
		t.Fatalf("second add must leave the set unchanged, got %v", got.Songs)
	}
}

func TestPlaylists_ListByRole(t *testing.T) {
	repo := newMockPlaylistRepo()
	repo.playlists["pub"] = domain.Playlist{ID: "pub", Name: "Picks", Visibility: domain.VisibilityPublic, OwnerID: "a1"}
	repo.playlists["mine"] = domain.Playlist{ID: "mine", Name: "Mine", Visibility: domain.VisibilityPrivate, OwnerID: "u1"}
	repo.playlists["other"] = domain.Playlist{ID: "other", Name: "Other", Visibility: domain.VisibilityPrivate, OwnerID: "u2"}
	svc := NewPlaylists(repo, newMockSongRepo(), testLogger())
	ctx := context.Background()

	adminView, err := svc.List(ctx, domain.Caller{UserID: "a1", Admin: true})
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if ids(adminView) != "pub" {
		t.Fatalf("admin should see public playlists, got %v", ids(adminView))
	}

	userView, err := svc.List(ctx, domain.Caller{UserID: "u1"})
	if err != nil {
		t.Fatalf("list as user: %v", err)
	}
	if ids(userView) != "mine" {
		t.Fatalf("user should see own playlists, got %v", ids(userView))
	}
}

func ids(playlists []domain.Playlist) string {
	out := make([]string, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, p.ID)
	}
	sort.Strings(out)
	s := ""
	for i, id := range out {
		if i > 0 {
			s += ","
		}
		s += id
	}
	return s
}
