package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/repositories"
	"github.com/vaporisers/reelist/internal/services"
	"github.com/vaporisers/reelist/internal/shared"
	"github.com/vaporisers/reelist/internal/stores"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *services.AppwriteClient
	catalog    services.CatalogAPI
	session    *stores.SessionStore
	watchlist  *stores.WatchlistStore
	tracker    *stores.SearchTracker
	binding    *stores.Binding
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *services.AppwriteClient
	Auth       services.AuthAPI
	Docs       services.DocumentAPI
	Catalog    services.CatalogAPI
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Auth and Docs default to Client when unset so tests can substitute fakes
// without constructing a real remote client.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Auth == nil && opts.Client != nil {
		opts.Auth = opts.Client
	}
	if opts.Docs == nil && opts.Client != nil {
		opts.Docs = opts.Client
	}

	session := stores.NewSessionStore(opts.Auth, opts.Logger)
	watchlist := stores.NewWatchlistStore(opts.Docs, opts.Config.Appwrite.DatabaseID, opts.Config.Appwrite.SavedCollection, opts.Logger)
	tracker := stores.NewSearchTracker(opts.Docs, opts.Config.Appwrite.DatabaseID, opts.Config.Appwrite.TrendingCollection, opts.Logger)
	binding := stores.BindWatchlist(context.Background(), session, watchlist, opts.Logger)

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		catalog:    opts.Catalog,
		session:    session,
		watchlist:  watchlist,
		tracker:    tracker,
		binding:    binding,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when the TUI redirects logs to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, watchlistCommand, moviesCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openDB lazily opens the local database used for session persistence.
func (r *Runner) openDB() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	r.db = db
	return db, nil
}

func (r *Runner) sessionRepo() (*repositories.SessionRepository, error) {
	db, err := r.openDB()
	if err != nil {
		return nil, err
	}
	return repositories.NewSessionRepository(db), nil
}

// restoreSession attaches a previously stored session secret to the remote
// client, if one exists. Missing or unreadable stored sessions are not fatal;
// the caller just proceeds as signed out.
func (r *Runner) restoreSession() {
	if r.client == nil {
		return
	}

	repo, err := r.sessionRepo()
	if err != nil {
		r.logger.Debug("session restore skipped", "error", err)
		return
	}

	stored, err := repo.Load()
	if err != nil || stored == nil {
		return
	}

	r.client.SetSession(stored.Secret)
}

// persistSession stores the current session secret so later invocations stay
// signed in.
func (r *Runner) persistSession() {
	sess := r.session.CurrentSession()
	if sess == nil {
		return
	}

	repo, err := r.sessionRepo()
	if err != nil {
		r.logger.Warn("failed to persist session", "error", err)
		return
	}

	if err := repo.Save(models.StoredSession{UserID: sess.UserID, Secret: sess.Secret}); err != nil {
		r.logger.Warn("failed to persist session", "error", err)
	}
}

// clearStoredSession drops the persisted session secret after logout.
func (r *Runner) clearStoredSession() {
	repo, err := r.sessionRepo()
	if err != nil {
		return
	}

	if err := repo.Clear(); err != nil {
		r.logger.Warn("failed to clear stored session", "error", err)
	}
}

// requireUser resolves the signed-in identity, restoring a stored session
// first. Commands that mutate the watchlist call this before touching the
// backend.
func (r *Runner) requireUser(ctx context.Context) (*models.Identity, error) {
	r.restoreSession()

	identity, err := r.session.Current(ctx)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, fmt.Errorf("%w: run 'reelist auth login' first", shared.ErrUnauthenticated)
	}

	return identity, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
