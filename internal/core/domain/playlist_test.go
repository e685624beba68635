package domain

import "testing"

func TestVisibilityFor(t *testing.T) {
	if got := VisibilityFor(Caller{UserID: "u1", Admin: true}); got != VisibilityPublic {
		t.Fatalf("admin playlists should be public, got %v", got)
	}
	if got := VisibilityFor(Caller{UserID: "u1"}); got != VisibilityPrivate {
		t.Fatalf("user playlists should be private, got %v", got)
	}
}

func TestPlaylist_CanUpdate(t *testing.T) {
	tests := []struct {
		name     string
		playlist Playlist
		caller   Caller
		want     bool
	}{
		{
			name:     "admin updates public",
			playlist: Playlist{Visibility: VisibilityPublic, OwnerID: "admin-1"},
			caller:   Caller{UserID: "admin-2", Admin: true},
			want:     true,
		},
		{
			name:     "non-admin cannot update public",
			playlist: Playlist{Visibility: VisibilityPublic, OwnerID: "admin-1"},
			caller:   Caller{UserID: "u1"},
			want:     false,
		},
		{
			name:     "owner updates private",
			playlist: Playlist{Visibility: VisibilityPrivate, OwnerID: "u1"},
			caller:   Caller{UserID: "u1"},
			want:     true,
		},
		{
			name:     "non-owner cannot update private",
			playlist: Playlist{Visibility: VisibilityPrivate, OwnerID: "u1"},
			caller:   Caller{UserID: "u2"},
			want:     false,
		},
		{
			name:     "admin cannot update foreign private",
			playlist: Playlist{Visibility: VisibilityPrivate, OwnerID: "u1"},
			caller:   Caller{UserID: "admin-1", Admin: true},
			want:     false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.playlist.CanUpdate(tc.caller); got != tc.want {
				t.Fatalf("CanUpdate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlaylist_CanDelete(t *testing.T) {
	owner := Caller{UserID: "u1"}
	stranger := Caller{UserID: "u2"}
	admin := Caller{UserID: "admin-1", Admin: true}

	private := Playlist{Visibility: VisibilityPrivate, OwnerID: "u1"}
	public := Playlist{Visibility: VisibilityPublic, OwnerID: "admin-2"}

	if !private.CanDelete(owner) {
		t.Fatal("owner should delete own private playlist")
	}
	if private.CanDelete(stranger) {
		t.Fatal("stranger should not delete foreign private playlist")
	}
	if private.CanDelete(admin) {
		t.Fatal("admin should not delete foreign private playlist")
	}
	if !public.CanDelete(admin) {
		t.Fatal("admin should delete public playlist")
	}
	if public.CanDelete(stranger) {
		t.Fatal("stranger should not delete public playlist")
	}
}

func TestPlaylist_HasSong(t *testing.T) {
	p := Playlist{Songs: []string{"s1", "s2"}}
	if !p.HasSong("s1") {
		t.Fatal("expected s1 to be present")
	}
	if p.HasSong("s3") {
		t.Fatal("did not expect s3 to be present")
	}
}

// The predicates take value receivers so they work on copies pulled straight
// out of maps and slices.
func TestPlaylist_PredicatesOnCopies(t *testing.T) {
	byID := map[string]Playlist{
		"p1": {Visibility: VisibilityPrivate, OwnerID: "u1", Songs: []string{"s1"}},
	}

	if !byID["p1"].HasSong("s1") {
		t.Fatal("expected s1 in the mapped playlist")
	}
	if !byID["p1"].CanUpdate(Caller{UserID: "u1"}) {
		t.Fatal("owner should be able to update the mapped playlist")
	}
	if byID["p1"].CanDelete(Caller{UserID: "u2"}) {
		t.Fatal("stranger should not be able to delete the mapped playlist")
	}
}
