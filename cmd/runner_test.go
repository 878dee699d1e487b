package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/shared"
	tu "github.com/vaporisers/reelist/internal/testing"
)

const (
	testDatabase = "moviedb"
	testSaved    = "saved"
	testTrending = "trending"
)

type testDeps struct {
	auth    *tu.FakeAuth
	docs    *tu.FakeDocuments
	catalog *tu.FakeCatalog
	db      *sql.DB
	output  *bytes.Buffer
}

func newTestRunner(t *testing.T) (*Runner, *testDeps) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// a second pooled connection would see its own empty in-memory database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	config := shared.DefaultConfig()
	config.Appwrite.DatabaseID = testDatabase
	config.Appwrite.SavedCollection = testSaved
	config.Appwrite.TrendingCollection = testTrending

	deps := &testDeps{
		auth:    tu.NewFakeAuth(),
		docs:    tu.NewFakeDocuments(),
		catalog: &tu.FakeCatalog{},
		db:      db,
		output:  &bytes.Buffer{},
	}
	deps.auth.Seed("user-1", "frank@example.com", "hunter2longer", "Frank")

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Auth:    deps.auth,
		Docs:    deps.docs,
		Catalog: deps.catalog,
		DB:      db,
		Output:  deps.output,
	})

	return runner, deps
}

func runApp(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "reelist",
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"reelist"}, args...))
}

func login(t *testing.T, runner *Runner) {
	t.Helper()

	if err := runApp(t, runner, "auth", "login", "--email", "frank@example.com", "--password", "hunter2longer"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("constructs stores", func(t *testing.T) {
			runner, _ := newTestRunner(t)

			if runner.session == nil {
				t.Error("expected session store to be set")
			}
			if runner.watchlist == nil {
				t.Error("expected watchlist store to be set")
			}
			if runner.tracker == nil {
				t.Error("expected search tracker to be set")
			}
			if runner.binding == nil {
				t.Error("expected watchlist binding to be set")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world" {
			t.Errorf("expected 'hello world', got %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("login signs in and persists the session", func(t *testing.T) {
		runner, deps := newTestRunner(t)

		login(t, runner)

		if !strings.Contains(deps.output.String(), "Signed in as Frank <frank@example.com>") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}

		repo, err := runner.sessionRepo()
		if err != nil {
			t.Fatalf("failed to open session repo: %v", err)
		}
		stored, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load stored session: %v", err)
		}
		if stored == nil {
			t.Fatal("expected session to be persisted")
		}
		if stored.UserID != "user-1" {
			t.Errorf("expected stored user-1, got %s", stored.UserID)
		}
	})

	t.Run("login with bad credentials fails", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		err := runApp(t, runner, "auth", "login", "--email", "frank@example.com", "--password", "wrong")
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected invalid credentials error, got %v", err)
		}
	})

	t.Run("register creates account and signs in", func(t *testing.T) {
		runner, deps := newTestRunner(t)

		err := runApp(t, runner, "auth", "register",
			"--email", "dee@example.com", "--password", "birdlawyer", "--name", "Dee")
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}

		if !strings.Contains(deps.output.String(), "Account created") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
		if runner.session.Identity() == nil {
			t.Error("expected registration to establish an identity")
		}
	})

	t.Run("whoami reports signed out state", func(t *testing.T) {
		runner, deps := newTestRunner(t)

		if err := runApp(t, runner, "auth", "whoami"); err != nil {
			t.Fatalf("whoami failed: %v", err)
		}
		if !strings.Contains(deps.output.String(), "Not signed in") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
	})

	t.Run("whoami reports the signed in account", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		login(t, runner)
		deps.output.Reset()

		if err := runApp(t, runner, "auth", "whoami"); err != nil {
			t.Fatalf("whoami failed: %v", err)
		}
		if !strings.Contains(deps.output.String(), "User ID: user-1") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
	})

	t.Run("logout clears the stored session", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		login(t, runner)

		if err := runApp(t, runner, "auth", "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}

		repo, err := runner.sessionRepo()
		if err != nil {
			t.Fatalf("failed to open session repo: %v", err)
		}
		stored, err := repo.Load()
		if err != nil {
			t.Fatalf("failed to load stored session: %v", err)
		}
		if stored != nil {
			t.Error("expected stored session to be cleared")
		}
		if runner.session.Identity() != nil {
			t.Error("expected identity to be cleared")
		}
	})

	t.Run("reset delegates to the auth service", func(t *testing.T) {
		runner, deps := newTestRunner(t)

		if err := runApp(t, runner, "auth", "reset", "--email", "frank@example.com"); err != nil {
			t.Fatalf("reset failed: %v", err)
		}
		if !strings.Contains(deps.output.String(), "Recovery email sent") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
		if deps.auth.CallCount == 0 {
			t.Error("expected recovery request to reach the auth service")
		}
	})
}

func TestWatchlistCommands(t *testing.T) {
	fightClub := models.Movie{
		ID:          550,
		Title:       "Fight Club",
		PosterPath:  "/fight-club.jpg",
		VoteAverage: 8.4,
		ReleaseDate: "1999-10-15",
	}

	t.Run("add requires a signed-in user", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		deps.catalog.Movies = []models.Movie{fightClub}

		err := runApp(t, runner, "watchlist", "add", "550")
		if !errors.Is(err, shared.ErrUnauthenticated) {
			t.Errorf("expected unauthenticated error, got %v", err)
		}
		if deps.docs.Count(testDatabase, testSaved) != 0 {
			t.Error("expected no documents to be created")
		}
	})

	t.Run("add saves the movie", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		deps.catalog.Movies = []models.Movie{fightClub}
		login(t, runner)
		deps.output.Reset()

		if err := runApp(t, runner, "watchlist", "add", "550"); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		if !strings.Contains(deps.output.String(), "Saved 'Fight Club'") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
		if deps.docs.Count(testDatabase, testSaved) != 1 {
			t.Errorf("expected one saved document, got %d", deps.docs.Count(testDatabase, testSaved))
		}
		if !runner.watchlist.IsSaved(550) {
			t.Error("expected movie to be saved locally after reload")
		}
	})

	t.Run("remove of an absent movie succeeds", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		login(t, runner)
		deps.output.Reset()

		if err := runApp(t, runner, "watchlist", "remove", "999"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if !strings.Contains(deps.output.String(), "Removed movie 999") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
	})

	t.Run("remove deletes the saved movie", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		deps.catalog.Movies = []models.Movie{fightClub}
		login(t, runner)

		if err := runApp(t, runner, "watchlist", "add", "550"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := runApp(t, runner, "watchlist", "remove", "550"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}

		if deps.docs.Count(testDatabase, testSaved) != 0 {
			t.Errorf("expected no saved documents, got %d", deps.docs.Count(testDatabase, testSaved))
		}
		if runner.watchlist.IsSaved(550) {
			t.Error("expected movie to be gone locally after reload")
		}
	})

	t.Run("list on an empty watchlist", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		login(t, runner)
		deps.output.Reset()

		if err := runApp(t, runner, "watchlist", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(deps.output.String(), "Watchlist is empty") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
	})

	t.Run("list shows saved movies", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		deps.catalog.Movies = []models.Movie{fightClub}
		login(t, runner)

		if err := runApp(t, runner, "watchlist", "add", "550"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		deps.output.Reset()

		if err := runApp(t, runner, "watchlist", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(deps.output.String(), "Fight Club (1999) [8.4]") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
	})

	t.Run("export writes the requested format", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		deps.catalog.Movies = []models.Movie{fightClub}
		login(t, runner)

		if err := runApp(t, runner, "watchlist", "add", "550"); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		base := filepath.Join(t.TempDir(), "export")
		if err := runApp(t, runner, "watchlist", "export", "--format", "csv", "--output", base); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		data, err := os.ReadFile(base + ".csv")
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if !strings.Contains(string(data), "Fight Club") {
			t.Error("export missing saved movie")
		}
	})

	t.Run("export rejects an unknown format before anything else", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		err := runApp(t, runner, "watchlist", "export", "--format", "xml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected invalid flag error even while signed out, got %v", err)
		}
	})
}

func TestMoviesCommands(t *testing.T) {
	fightClub := models.Movie{
		ID:          550,
		Title:       "Fight Club",
		PosterPath:  "/fight-club.jpg",
		VoteAverage: 8.4,
		ReleaseDate: "1999-10-15",
	}

	t.Run("search prints results and records the term", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		deps.catalog.Movies = []models.Movie{fightClub}

		if err := runApp(t, runner, "movies", "search", "fight"); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if !strings.Contains(deps.output.String(), "Fight Club (1999) [8.4] id=550") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
		if deps.docs.Count(testDatabase, testTrending) != 1 {
			t.Errorf("expected one trending document, got %d", deps.docs.Count(testDatabase, testTrending))
		}
	})

	t.Run("search without a query fails", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		err := runApp(t, runner, "movies", "search")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected missing argument error, got %v", err)
		}
	})

	t.Run("popular prints the feed", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		deps.catalog.Movies = []models.Movie{fightClub}

		if err := runApp(t, runner, "movies", "popular"); err != nil {
			t.Fatalf("popular failed: %v", err)
		}
		if !strings.Contains(deps.output.String(), "Popular Movies") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
	})

	t.Run("show prints details", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		deps.catalog.Movies = []models.Movie{fightClub}

		if err := runApp(t, runner, "movies", "show", "550"); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		if !strings.Contains(deps.output.String(), "Rating: 8.4") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
	})

	t.Run("trending reflects recorded searches", func(t *testing.T) {
		runner, deps := newTestRunner(t)
		deps.catalog.Movies = []models.Movie{fightClub}

		for range 3 {
			if err := runApp(t, runner, "movies", "search", "fight"); err != nil {
				t.Fatalf("search failed: %v", err)
			}
		}
		deps.output.Reset()

		if err := runApp(t, runner, "movies", "trending"); err != nil {
			t.Fatalf("trending failed: %v", err)
		}
		if !strings.Contains(deps.output.String(), "Fight Club (3 searches)") {
			t.Errorf("unexpected output: %s", deps.output.String())
		}
	})
}
