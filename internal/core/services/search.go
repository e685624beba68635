package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
	"github.com/ewilliams-labs/chorus/internal/core/ports"
)

// searchLimit caps ranked results per query.
const searchLimit = 10

// Search is a thin facade over the weighted text index.
type Search struct {
	index ports.SearchIndex
}

func NewSearch(index ports.SearchIndex) *Search {
	return &Search{index: index}
}

func (s *Search) Songs(ctx context.Context, text string) ([]domain.Song, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("service: search text is required: %w", domain.ErrInvalidInput)
	}
	results, err := s.index.Search(ctx, text, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("service: search failed: %w", err)
	}
	return results, nil
}
