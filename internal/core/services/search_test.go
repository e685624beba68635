package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

type mockSearchIndex struct {
	results   []domain.Song
	lastText  string
	lastLimit int
}

func (m *mockSearchIndex) Search(ctx context.Context, text string, limit int) ([]domain.Song, error) {
	m.lastText = text
	m.lastLimit = limit
	return m.results, nil
}

func TestSearch_RequiresText(t *testing.T) {
	svc := NewSearch(&mockSearchIndex{})

	for _, text := range []string{"", "   "} {
		if _, err := svc.Songs(context.Background(), text); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", text, err)
		}
	}
}

func TestSearch_ForwardsQueryWithLimit(t *testing.T) {
	index := &mockSearchIndex{results: []domain.Song{{ID: "s1", Name: "Blue Moon"}}}
	svc := NewSearch(index)

	results, err := svc.Songs(context.Background(), "blue")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "s1" {
		t.Fatalf("unexpected results %+v", results)
	}
	if index.lastText != "blue" || index.lastLimit != 10 {
		t.Fatalf("query not forwarded, text=%q limit=%d", index.lastText, index.lastLimit)
	}
}
