package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/services"
	"github.com/vaporisers/reelist/internal/stores"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	ResultListView
	WatchlistView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	catalog    services.CatalogAPI
	session    *stores.SessionStore
	watchlist  *stores.WatchlistStore
	tracker    *stores.SearchTracker
	logger     *log.Logger
	view       ViewState
	width      int
	height     int
	input      textinput.Model
	resultList list.Model
	movies     []models.Movie
	listTitle  string
	entryList  list.Model
	status     string
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, catalog services.CatalogAPI, session *stores.SessionStore, watchlist *stores.WatchlistStore, tracker *stores.SearchTracker, logger *log.Logger) *Model {
	input := textinput.New()
	input.Placeholder = "Search movies..."
	input.CharLimit = 100
	input.Width = 40
	input.Focus()

	return &Model{
		ctx:       ctx,
		catalog:   catalog,
		session:   session,
		watchlist: watchlist,
		tracker:   tracker,
		logger:    logger,
		view:      SearchView,
		input:     input,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts with the popular feed so the result list is never empty.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchPopular())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.resultList.Width() == 0 {
			m.resultList.SetSize(msg.Width-4, msg.Height-10)
		}
		if m.entryList.Width() == 0 {
			m.entryList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultListView:
			return m.handleResultKeys(msg)
		case WatchlistView:
			return m.handleWatchlistKeys(msg)
		}

	case Msg:
		return m.handleAppMsg(msg)
	}

	return m.updateFocused(msg)
}

func (m *Model) handleAppMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgMoviesFetched:
		data := msg.data.(struct {
			title  string
			movies []models.Movie
			err    error
		})
		if data.err != nil {
			m.err = data.err
			m.status = ""
			m.view = SearchView
			return m, nil
		}
		m.err = nil
		m.status = ""
		m.movies = data.movies
		m.listTitle = data.title
		m.rebuildResultList()
		m.view = ResultListView
		return m, nil

	case MsgWatchlistRefreshed:
		if err, ok := msg.data.(error); ok && err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.rebuildEntryList()
		return m, nil

	case MsgEntryToggled:
		data := msg.data.(struct {
			movie models.Movie
			saved bool
			err   error
		})
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		if data.saved {
			m.status = fmt.Sprintf("Saved '%s'", data.movie.Title)
		} else {
			m.status = fmt.Sprintf("Removed '%s'", data.movie.Title)
		}
		m.rebuildResultList()
		m.rebuildEntryList()
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case ResultListView:
		return m.renderResults()
	case WatchlistView:
		return m.renderWatchlist()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if len(m.movies) > 0 {
			m.view = ResultListView
		}
		return m, nil
	case "tab":
		m.view = WatchlistView
		return m, m.refreshWatchlist()
	case "enter":
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, m.fetchPopular()
		}
		m.status = fmt.Sprintf("Searching for '%s'...", query)
		return m, m.search(query)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/", "esc":
		m.view = SearchView
		m.input.Focus()
		return m, textinput.Blink
	case "tab":
		m.view = WatchlistView
		return m, m.refreshWatchlist()
	case "enter":
		selected := m.resultList.SelectedItem()
		if selected != nil {
			if mi, ok := selected.(movieItem); ok {
				return m, m.toggleSaved(mi.movie)
			}
		}
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "esc":
		m.view = ResultListView
		return m, nil
	case "/":
		m.view = SearchView
		m.input.Focus()
		return m, textinput.Blink
	case "enter":
		selected := m.entryList.SelectedItem()
		if selected != nil {
			if ei, ok := selected.(entryItem); ok {
				movie := models.Movie{
					ID:          ei.entry.MovieID,
					Title:       ei.entry.Title,
					PosterPath:  ei.entry.PosterPath,
					VoteAverage: ei.entry.VoteAverage,
					ReleaseDate: ei.entry.ReleaseDate,
				}
				return m, m.toggleSaved(movie)
			}
		}
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case ResultListView:
		m.resultList, cmd = m.resultList.Update(msg)
	case WatchlistView:
		m.entryList, cmd = m.entryList.Update(msg)
	}
	return m, cmd
}

func (m *Model) rebuildResultList() {
	index := m.resultList.Index()
	items := make([]list.Item, len(m.movies))
	for i, movie := range m.movies {
		items[i] = movieItem{movie: movie, saved: m.watchlist.IsSaved(movie.ID)}
	}
	m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.resultList.Title = m.listTitle
	m.resultList.SetSize(m.width-4, m.height-10)
	if index < len(items) {
		m.resultList.Select(index)
	}
}

func (m *Model) rebuildEntryList() {
	index := m.entryList.Index()
	entries := m.watchlist.Entries()
	items := make([]list.Item, len(entries))
	for i, entry := range entries {
		items[i] = entryItem{entry: entry}
	}
	m.entryList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.entryList.Title = "Watchlist"
	m.entryList.SetSize(m.width-4, m.height-10)
	if index < len(items) {
		m.entryList.Select(index)
	}
}

func (m *Model) fetchPopular() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.catalog.PopularMovies(m.ctx)
		return moviesFetchedMsg("Popular Movies", movies, err)
	}
}

func (m *Model) search(query string) tea.Cmd {
	return func() tea.Msg {
		movies, err := m.catalog.SearchMovies(m.ctx, query)
		if err == nil && len(movies) > 0 && m.tracker != nil {
			if terr := m.tracker.Record(m.ctx, query, movies[0]); terr != nil {
				m.logger.Warn("failed to record search", "term", query, "error", terr)
			}
		}
		return moviesFetchedMsg(fmt.Sprintf("Results for '%s'", query), movies, err)
	}
}

func (m *Model) refreshWatchlist() tea.Cmd {
	return func() tea.Msg {
		return watchlistRefreshedMsg(m.watchlist.Load(m.ctx, m.watchlist.UserID()))
	}
}

func (m *Model) toggleSaved(movie models.Movie) tea.Cmd {
	return func() tea.Msg {
		userID := m.watchlist.UserID()
		if m.watchlist.IsSaved(movie.ID) {
			err := m.watchlist.Remove(m.ctx, movie.ID, userID)
			return entryToggledMsg(movie, false, err)
		}

		entry := models.WatchlistEntry{
			MovieID:     movie.ID,
			Title:       movie.Title,
			PosterPath:  movie.PosterPath,
			VoteAverage: movie.VoteAverage,
			ReleaseDate: movie.ReleaseDate,
		}
		err := m.watchlist.Add(m.ctx, entry, userID)
		return entryToggledMsg(movie, true, err)
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("reelist")

	var owner string
	if identity := m.session.Identity(); identity != nil {
		owner = styles.ok.Render(fmt.Sprintf("signed in as %s", identity.Email))
	} else {
		owner = styles.warn.Render("not signed in; saving is disabled")
	}

	body := fmt.Sprintf("%s\n%s\n\n%s", title, owner, m.input.View())

	if m.status != "" {
		body += "\n\n" + m.status
	}
	if m.err != nil {
		body += "\n\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	searchKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
	helpView := m.help.ShortHelpView([]key.Binding{searchKey, m.keys.switc, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}

func (m *Model) renderResults() string {
	body := m.resultList.View()

	if m.status != "" {
		body += "\n" + styles.ok.Render(m.status)
	}
	if m.err != nil {
		body += "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.search, m.keys.switc, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}

func (m *Model) renderWatchlist() string {
	body := m.entryList.View()

	if m.err != nil {
		body += "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	removeKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "remove"))
	backKey := key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "results"))
	helpView := m.help.ShortHelpView([]key.Binding{removeKey, backKey, m.keys.search, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}
