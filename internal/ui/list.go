package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/vaporisers/reelist/internal/models"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = entryItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
//
// Membership in the watchlist is resolved at render time so the marker stays
// correct after the store reloads.
type movieItem struct {
	movie models.Movie
	saved bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	marker := ""
	if i.saved {
		marker = "★ "
	}
	if year := i.movie.Year(); year != "" {
		return fmt.Sprintf("%s%s (%s)", marker, i.movie.Title, year)
	}
	return marker + i.movie.Title
}
func (i movieItem) Description() string {
	desc := fmt.Sprintf("%.1f", i.movie.VoteAverage)
	if i.movie.Overview != "" {
		overview := i.movie.Overview
		if len(overview) > 80 {
			overview = overview[:77] + "..."
		}
		desc = fmt.Sprintf("%s • %s", desc, overview)
	}
	return desc
}

// entryItem wraps [models.WatchlistEntry] to implement [list.Item].
type entryItem struct {
	entry models.WatchlistEntry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string {
	if year := i.entry.Year(); year != "" {
		return fmt.Sprintf("%s (%s)", i.entry.Title, year)
	}
	return i.entry.Title
}
func (i entryItem) Description() string {
	return fmt.Sprintf("%.1f • saved %s", i.entry.VoteAverage, i.entry.SavedAt.Format("2006-01-02"))
}
