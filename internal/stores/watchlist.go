package stores

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/services"
	"github.com/vaporisers/reelist/internal/shared"
)

// WatchlistStore maintains the saved-movie collection for the current identity
// and keeps it consistent with the remote document store.
//
// Every mutation re-reads the collection from the remote store after the write
// completes; the local collection never reflects an optimistic append. Server
// side field coercion (rating rounding, poster URL expansion) therefore always
// wins. When two mutations race, each ends with its own reload and the reload
// that resolves last determines the local collection.
type WatchlistStore struct {
	mu           sync.RWMutex
	docs         services.DocumentAPI
	databaseID   string
	collectionID string
	logger       *log.Logger
	userID       string
	entries      []models.WatchlistEntry
	loading      bool
}

// NewWatchlistStore creates a watchlist store over the given collection.
func NewWatchlistStore(docs services.DocumentAPI, databaseID, collectionID string, logger *log.Logger) *WatchlistStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &WatchlistStore{
		docs:         docs,
		databaseID:   databaseID,
		collectionID: collectionID,
		logger:       logger,
	}
}

// UserID returns the identity the collection currently belongs to.
func (w *WatchlistStore) UserID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.userID
}

// Loading reports whether a load is in flight.
func (w *WatchlistStore) Loading() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loading
}

// Entries returns a snapshot of the current collection, most recently saved
// first.
func (w *WatchlistStore) Entries() []models.WatchlistEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	entries := make([]models.WatchlistEntry, len(w.entries))
	copy(entries, w.entries)
	return entries
}

// IsSaved reports whether the movie is in the current collection.
// Pure local lookup; never calls the backend.
func (w *WatchlistStore) IsSaved(movieID int) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, e := range w.entries {
		if e.MovieID == movieID {
			return true
		}
	}
	return false
}

// Load fetches the full collection for userID from the remote store, ordered
// by save time descending.
//
// An empty userID empties the collection without touching the backend. On
// failure the prior collection is left unchanged. Load never re-keys the
// store: the user scope is written only by the identity binding, and a result
// arriving after the scope moved on is discarded as stale.
func (w *WatchlistStore) Load(ctx context.Context, userID string) error {
	if userID == "" {
		w.mu.Lock()
		w.entries = nil
		w.mu.Unlock()
		return nil
	}

	w.setLoading(true)
	defer w.setLoading(false)

	queries := []string{
		services.QueryEqual("user_id", userID),
		services.QueryOrderDesc("saved_at"),
	}

	list, err := w.docs.ListDocuments(ctx, w.databaseID, w.collectionID, queries)
	if err != nil {
		return fmt.Errorf("failed to load watchlist: %w", err)
	}

	entries := make([]models.WatchlistEntry, 0, len(list.Documents))
	for _, doc := range list.Documents {
		entries = append(entries, entryFromDocument(doc))
	}

	w.mu.Lock()
	if w.userID != userID {
		w.mu.Unlock()
		w.logger.Debug("watchlist re-keyed during load, discarding result", "user_id", userID)
		return nil
	}
	w.entries = entries
	w.mu.Unlock()

	return nil
}

// Add saves a movie for userID, then reloads the collection from the remote
// store so local state reflects what was actually persisted.
//
// Fails with shared.ErrUnauthenticated before any backend call when no user is
// signed in. On backend failure the local collection is untouched.
func (w *WatchlistStore) Add(ctx context.Context, entry models.WatchlistEntry, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: saving requires a signed-in user", shared.ErrUnauthenticated)
	}

	data := map[string]any{
		"user_id":      userID,
		"movie_id":     entry.MovieID,
		"title":        entry.Title,
		"poster_path":  models.PosterURL(entry.PosterPath),
		"vote_average": math.Round(entry.VoteAverage*10) / 10,
		"release_date": entry.ReleaseDate,
		"saved_at":     time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := w.docs.CreateDocument(ctx, w.databaseID, w.collectionID, shared.GenerateID(), data); err != nil {
		return fmt.Errorf("failed to save movie %d: %w", entry.MovieID, err)
	}

	w.logger.Debug("movie saved", "movie_id", entry.MovieID, "user_id", userID)
	return w.Load(ctx, userID)
}

// Remove deletes the saved movie matching (userID, movieID), then reloads.
//
// Removing a movie that is not saved is a silent no-op, not an error. Fails
// with shared.ErrUnauthenticated before any backend call when no user is
// signed in.
func (w *WatchlistStore) Remove(ctx context.Context, movieID int, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: removing requires a signed-in user", shared.ErrUnauthenticated)
	}

	queries := []string{
		services.QueryEqual("user_id", userID),
		services.QueryEqual("movie_id", movieID),
	}

	list, err := w.docs.ListDocuments(ctx, w.databaseID, w.collectionID, queries)
	if err != nil {
		return fmt.Errorf("failed to look up movie %d: %w", movieID, err)
	}

	if len(list.Documents) == 0 {
		w.logger.Debug("movie not in watchlist, nothing to remove", "movie_id", movieID)
		return nil
	}

	if err := w.docs.DeleteDocument(ctx, w.databaseID, w.collectionID, list.Documents[0].ID); err != nil {
		return fmt.Errorf("failed to remove movie %d: %w", movieID, err)
	}

	w.logger.Debug("movie removed", "movie_id", movieID, "user_id", userID)
	return w.Load(ctx, userID)
}

// setUser re-keys the store to a new identity. Only the identity binding may
// call this; no other writer is permitted. Entries belonging to a previous
// identity are dropped immediately so a failed reload can never show one
// user's collection under another's scope.
func (w *WatchlistStore) setUser(userID string) {
	w.mu.Lock()
	if w.userID != userID {
		w.entries = nil
	}
	w.userID = userID
	w.mu.Unlock()
}

// clear empties the collection without calling the backend.
func (w *WatchlistStore) clear() {
	w.mu.Lock()
	w.userID = ""
	w.entries = nil
	w.loading = false
	w.mu.Unlock()
}

func (w *WatchlistStore) setLoading(v bool) {
	w.mu.Lock()
	w.loading = v
	w.mu.Unlock()
}

// entryFromDocument maps a remote saved-movie document to the local entry
// form, restoring the relative poster path.
func entryFromDocument(doc services.Document) models.WatchlistEntry {
	savedAt, err := time.Parse(time.RFC3339, doc.String("saved_at"))
	if err != nil {
		savedAt = time.Time{}
	}

	return models.WatchlistEntry{
		DocumentID:  doc.ID,
		MovieID:     doc.Int("movie_id"),
		Title:       doc.String("title"),
		PosterPath:  models.PosterPathFromURL(doc.String("poster_path")),
		VoteAverage: doc.Float("vote_average"),
		ReleaseDate: doc.String("release_date"),
		SavedAt:     savedAt,
	}
}
