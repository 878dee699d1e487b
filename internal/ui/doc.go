// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing and saving movies:
//  1. [SearchView] : Enter a search term for the movie catalog
//  2. [ResultListView] : Browse results and toggle watchlist membership
//  3. [WatchlistView] : Review saved movies and remove entries
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Watchlist mutations go through the watchlist store, which reloads from the remote service after every write, so the
// list shown on screen always reflects server state rather than an optimistic local guess.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
