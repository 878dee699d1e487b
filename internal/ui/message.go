package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vaporisers/reelist/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgMoviesFetched MsgKind = iota
	MsgWatchlistRefreshed
	MsgEntryToggled
)

// moviesFetchedMsg is the constructor for [MsgMoviesFetched]
func moviesFetchedMsg(title string, movies []models.Movie, err error) Msg {
	return Msg{
		kind: MsgMoviesFetched,
		data: struct {
			title  string
			movies []models.Movie
			err    error
		}{title, movies, err},
	}
}

// watchlistRefreshedMsg is the constructor for [MsgWatchlistRefreshed]
func watchlistRefreshedMsg(err error) Msg {
	return Msg{kind: MsgWatchlistRefreshed, data: err}
}

// entryToggledMsg is the constructor for [MsgEntryToggled]
func entryToggledMsg(movie models.Movie, saved bool, err error) Msg {
	return Msg{
		kind: MsgEntryToggled,
		data: struct {
			movie models.Movie
			saved bool
			err   error
		}{movie, saved, err},
	}
}
