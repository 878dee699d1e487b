package stores

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/services"
	"github.com/vaporisers/reelist/internal/shared"
)

// SearchTracker maintains the search counter collection: one document per
// search term, with a count incremented on repeat searches. The counters feed
// the trending list.
type SearchTracker struct {
	docs         services.DocumentAPI
	databaseID   string
	collectionID string
	logger       *log.Logger
}

// NewSearchTracker creates a tracker over the given counter collection.
func NewSearchTracker(docs services.DocumentAPI, databaseID, collectionID string, logger *log.Logger) *SearchTracker {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SearchTracker{
		docs:         docs,
		databaseID:   databaseID,
		collectionID: collectionID,
		logger:       logger,
	}
}

// Record counts a search, attributing the term to its top result. An existing
// counter for the term is incremented; otherwise a new one is created.
func (t *SearchTracker) Record(ctx context.Context, term string, movie models.Movie) error {
	if term == "" {
		return fmt.Errorf("%w: search term is required", shared.ErrMissingArgument)
	}

	queries := []string{services.QueryEqual("searchTerm", term)}

	list, err := t.docs.ListDocuments(ctx, t.databaseID, t.collectionID, queries)
	if err != nil {
		return fmt.Errorf("failed to look up search counter: %w", err)
	}

	if len(list.Documents) > 0 {
		doc := list.Documents[0]
		data := map[string]any{"count": doc.Int("count") + 1}
		if _, err := t.docs.UpdateDocument(ctx, t.databaseID, t.collectionID, doc.ID, data); err != nil {
			return fmt.Errorf("failed to increment search counter: %w", err)
		}
		return nil
	}

	data := map[string]any{
		"searchTerm": term,
		"movie_id":   movie.ID,
		"title":      movie.Title,
		"poster_url": models.PosterURL(movie.PosterPath),
		"count":      1,
	}

	if _, err := t.docs.CreateDocument(ctx, t.databaseID, t.collectionID, shared.GenerateID(), data); err != nil {
		return fmt.Errorf("failed to create search counter: %w", err)
	}

	return nil
}

// Trending returns the most searched movies, highest count first.
func (t *SearchTracker) Trending(ctx context.Context, limit int) ([]models.TrendingMovie, error) {
	if limit <= 0 {
		limit = 10
	}

	queries := []string{
		services.QueryOrderDesc("count"),
		services.QueryLimit(limit),
	}

	list, err := t.docs.ListDocuments(ctx, t.databaseID, t.collectionID, queries)
	if err != nil {
		return nil, fmt.Errorf("failed to load trending movies: %w", err)
	}

	trending := make([]models.TrendingMovie, 0, len(list.Documents))
	for _, doc := range list.Documents {
		trending = append(trending, models.TrendingMovie{
			DocumentID: doc.ID,
			MovieID:    doc.Int("movie_id"),
			Title:      doc.String("title"),
			PosterURL:  doc.String("poster_url"),
			SearchTerm: doc.String("searchTerm"),
			Count:      doc.Int("count"),
		})
	}

	return trending, nil
}
