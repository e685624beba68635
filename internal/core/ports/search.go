package ports

import (
	"context"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

// SearchIndex is a weighted full-text index over song name and lyrics, name
// weighted higher. Results come back ordered by descending relevance.
type SearchIndex interface {
	Search(ctx context.Context, text string, limit int) ([]domain.Song, error)
}
