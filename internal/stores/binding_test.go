package stores

import (
	"context"
	"testing"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/shared"
	tu "github.com/vaporisers/reelist/internal/testing"
)

func seedSaved(t *testing.T, docs *tu.FakeDocuments, userID string, movieID int, title string) {
	t.Helper()
	data := map[string]any{
		"user_id":      userID,
		"movie_id":     movieID,
		"title":        title,
		"poster_path":  models.PosterPlaceholderURL,
		"vote_average": 7.0,
		"release_date": "2020-01-01",
		"saved_at":     "2024-01-01T10:00:00Z",
	}
	if _, err := docs.CreateDocument(context.Background(), testDB, testCol, title, data); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestBinding(t *testing.T) {
	ctx := context.Background()

	t.Run("Sign In Loads The User's Watchlist", func(t *testing.T) {
		auth := tu.NewFakeAuth()
		auth.Seed("u1", "ann@example.com", "password123", "Ann")
		docs := tu.NewFakeDocuments()
		seedSaved(t, docs, "u1", 550, "Fight Club")

		session := NewSessionStore(auth, nil)
		watchlist := newWatchlist(docs)
		BindWatchlist(ctx, session, watchlist, nil)

		if _, err := session.Login(ctx, "ann@example.com", "password123"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		if watchlist.UserID() != "u1" {
			t.Errorf("expected watchlist keyed to u1, got %q", watchlist.UserID())
		}
		if !watchlist.IsSaved(550) {
			t.Error("expected the user's saved movie to be loaded")
		}
	})

	t.Run("Sign Out Empties Watchlist With Zero Backend Calls", func(t *testing.T) {
		auth := tu.NewFakeAuth()
		auth.Seed("u1", "ann@example.com", "password123", "Ann")
		docs := tu.NewFakeDocuments()
		seedSaved(t, docs, "u1", 550, "Fight Club")

		session := NewSessionStore(auth, nil)
		watchlist := newWatchlist(docs)
		BindWatchlist(ctx, session, watchlist, nil)

		if _, err := session.Login(ctx, "ann@example.com", "password123"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		calls := docs.CallCount
		if err := session.Logout(ctx); err != nil {
			t.Fatalf("logout failed: %v", err)
		}

		if docs.CallCount != calls {
			t.Errorf("sign-out must not call the document backend, got %d extra calls", docs.CallCount-calls)
		}
		if len(watchlist.Entries()) != 0 {
			t.Errorf("expected empty collection after sign-out, got %d entries", len(watchlist.Entries()))
		}
		if watchlist.UserID() != "" {
			t.Errorf("expected cleared user, got %q", watchlist.UserID())
		}
	})

	t.Run("Switching Users Never Mixes Collections", func(t *testing.T) {
		auth := tu.NewFakeAuth()
		auth.Seed("ua", "a@example.com", "password123", "A")
		auth.Seed("ub", "b@example.com", "password123", "B")
		docs := tu.NewFakeDocuments()
		seedSaved(t, docs, "ua", 100, "A's Movie")
		seedSaved(t, docs, "ub", 200, "B's Movie")

		session := NewSessionStore(auth, nil)
		watchlist := newWatchlist(docs)
		BindWatchlist(ctx, session, watchlist, nil)

		if _, err := session.Login(ctx, "b@example.com", "password123"); err != nil {
			t.Fatalf("login as B failed: %v", err)
		}
		if err := session.Logout(ctx); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if _, err := session.Login(ctx, "a@example.com", "password123"); err != nil {
			t.Fatalf("login as A failed: %v", err)
		}

		if watchlist.UserID() != "ua" {
			t.Errorf("expected watchlist keyed to ua, got %q", watchlist.UserID())
		}
		entries := watchlist.Entries()
		if len(entries) != 1 || entries[0].MovieID != 100 {
			t.Errorf("expected only A's entry, got %+v", entries)
		}
	})

	t.Run("Failed Reload After Switch Never Shows The Previous User's Entries", func(t *testing.T) {
		auth := tu.NewFakeAuth()
		auth.Seed("ua", "a@example.com", "password123", "A")
		auth.Seed("ub", "b@example.com", "password123", "B")
		docs := tu.NewFakeDocuments()
		seedSaved(t, docs, "ua", 100, "A's Movie")
		seedSaved(t, docs, "ub", 200, "B's Movie")

		session := NewSessionStore(auth, nil)
		watchlist := newWatchlist(docs)
		BindWatchlist(ctx, session, watchlist, nil)

		if _, err := session.Login(ctx, "a@example.com", "password123"); err != nil {
			t.Fatalf("login as A failed: %v", err)
		}
		if !watchlist.IsSaved(100) {
			t.Fatal("expected A's entry loaded before the switch")
		}

		docs.FailWith = shared.ErrProvider
		if _, err := session.Login(ctx, "b@example.com", "password123"); err != nil {
			t.Fatalf("login as B failed: %v", err)
		}

		if watchlist.UserID() != "ub" {
			t.Errorf("expected watchlist keyed to ub, got %q", watchlist.UserID())
		}
		if len(watchlist.Entries()) != 0 {
			t.Errorf("expected empty collection while B's reload fails, got %+v", watchlist.Entries())
		}
	})
}

func TestSearchTracker(t *testing.T) {
	ctx := context.Background()
	movie := models.Movie{ID: 550, Title: "Fight Club", PosterPath: "/poster.jpg"}

	t.Run("First Search Creates A Counter", func(t *testing.T) {
		docs := tu.NewFakeDocuments()
		tracker := NewSearchTracker(docs, testDB, "trending", nil)

		if err := tracker.Record(ctx, "fight club", movie); err != nil {
			t.Fatalf("record failed: %v", err)
		}

		trending, err := tracker.Trending(ctx, 10)
		if err != nil {
			t.Fatalf("trending failed: %v", err)
		}
		if len(trending) != 1 || trending[0].Count != 1 {
			t.Fatalf("expected one counter with count 1, got %+v", trending)
		}
		if trending[0].PosterURL != models.PosterBaseURL+"/poster.jpg" {
			t.Errorf("expected full poster URL, got %q", trending[0].PosterURL)
		}
	})

	t.Run("Repeat Search Increments", func(t *testing.T) {
		docs := tu.NewFakeDocuments()
		tracker := NewSearchTracker(docs, testDB, "trending", nil)

		for range 3 {
			if err := tracker.Record(ctx, "fight club", movie); err != nil {
				t.Fatalf("record failed: %v", err)
			}
		}

		trending, err := tracker.Trending(ctx, 10)
		if err != nil {
			t.Fatalf("trending failed: %v", err)
		}
		if len(trending) != 1 || trending[0].Count != 3 {
			t.Errorf("expected a single counter at 3, got %+v", trending)
		}
	})

	t.Run("Trending Orders By Count Descending", func(t *testing.T) {
		docs := tu.NewFakeDocuments()
		tracker := NewSearchTracker(docs, testDB, "trending", nil)

		other := models.Movie{ID: 680, Title: "Pulp Fiction"}
		if err := tracker.Record(ctx, "pulp fiction", other); err != nil {
			t.Fatalf("record failed: %v", err)
		}
		for range 2 {
			if err := tracker.Record(ctx, "fight club", movie); err != nil {
				t.Fatalf("record failed: %v", err)
			}
		}

		trending, err := tracker.Trending(ctx, 10)
		if err != nil {
			t.Fatalf("trending failed: %v", err)
		}
		if len(trending) != 2 {
			t.Fatalf("expected 2 counters, got %d", len(trending))
		}
		if trending[0].SearchTerm != "fight club" {
			t.Errorf("expected most searched first, got %q", trending[0].SearchTerm)
		}
	})
}
