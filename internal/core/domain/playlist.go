package domain

// Visibility partitions playlists into admin-published and user-owned.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Caller identifies the authenticated user issuing a request. Token validation
// happens upstream; only the identity and admin flag reach this layer.
type Caller struct {
	UserID string
	Admin  bool
}

// Playlist is an ordered set of song ids owned by a user. Name is unique per
// owner; Songs never contains duplicates.
type Playlist struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Color      string     `json:"color,omitempty"`
	Visibility Visibility `json:"type"`
	OwnerID    string     `json:"userId"`
	Songs      []string   `json:"songs"`
}

// VisibilityFor assigns visibility from the caller's role. The client never
// chooses it at creation time.
func VisibilityFor(c Caller) Visibility {
	if c.Admin {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

// CanUpdate reports whether the caller may mutate the playlist: public
// playlists are admin-only, private playlists belong to their owner.
func (p Playlist) CanUpdate(c Caller) bool {
	if p.Visibility == VisibilityPublic {
		return c.Admin
	}
	return p.OwnerID == c.UserID
}

// CanDelete reports whether the caller may delete the playlist. Owners can
// always delete their own; admins can delete public ones.
func (p Playlist) CanDelete(c Caller) bool {
	if p.OwnerID == c.UserID {
		return true
	}
	return p.Visibility == VisibilityPublic && c.Admin
}

// HasSong reports membership of a song id.
func (p Playlist) HasSong(songID string) bool {
	for _, id := range p.Songs {
		if id == songID {
			return true
		}
	}
	return false
}

// PlaylistUpdate carries a partial update; nil fields are left untouched. A
// non-nil Songs replaces the membership set (deduplicated by the store).
type PlaylistUpdate struct {
	Name       *string
	Color      *string
	Visibility *Visibility
	Songs      []string
}

// MembershipFailure is one per-playlist failure from a bulk add. The operation
// as a whole still succeeds; callers inspect the list.
type MembershipFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}
