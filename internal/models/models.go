// package models defines the data model for the reelist watchlist client
package models

import (
	"strings"
	"time"
)

const (
	// PosterBaseURL is the TMDB image host prefix stored in remote documents.
	PosterBaseURL = "https://image.tmdb.org/t/p/w500"

	// PosterPlaceholderURL is stored when a movie has no poster.
	PosterPlaceholderURL = "https://placehold.co/600x400/1a1a1a/FFFFFF.png"
)

// Identity represents an authenticated user as issued by the auth service.
//
// Created on successful login or registration, replaced on re-authentication,
// cleared on logout.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// WatchlistEntry represents one saved-movie record scoped to a user.
//
// DocumentID is the remote document identifier, required for deletion.
// PosterPath holds the TMDB-relative path ("/abc.jpg"); the full URL form only
// exists in the remote store.
type WatchlistEntry struct {
	DocumentID  string    `json:"-"`
	MovieID     int       `json:"movie_id"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path"`
	VoteAverage float64   `json:"vote_average"`
	ReleaseDate string    `json:"release_date"`
	SavedAt     time.Time `json:"saved_at"`
}

// Movie represents a movie from the TMDB catalog.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

// TrendingMovie represents an aggregated search counter row from the remote store.
type TrendingMovie struct {
	DocumentID string `json:"-"`
	MovieID    int    `json:"movie_id"`
	Title      string `json:"title"`
	PosterURL  string `json:"poster_url"`
	SearchTerm string `json:"search_term"`
	Count      int    `json:"count"`
}

// StoredSession holds a locally persisted auth session so the CLI stays signed
// in across invocations.
type StoredSession struct {
	UserID    string
	Secret    string
	CreatedAt time.Time
}

// PosterURL returns the full poster image URL for a relative poster path,
// or the placeholder when the path is empty.
func PosterURL(posterPath string) string {
	if posterPath == "" {
		return PosterPlaceholderURL
	}
	return PosterBaseURL + posterPath
}

// PosterPathFromURL strips the TMDB image host prefix from a stored poster URL,
// restoring the relative path form used locally.
func PosterPathFromURL(posterURL string) string {
	if posterURL == PosterPlaceholderURL {
		return ""
	}
	return strings.TrimPrefix(posterURL, PosterBaseURL)
}

// Year returns the release year portion of the movie's release date, or an
// empty string when the date is unknown.
func (m Movie) Year() string {
	if m.ReleaseDate == "" {
		return ""
	}
	return strings.SplitN(m.ReleaseDate, "-", 2)[0]
}

// Year returns the release year portion of the entry's release date, or an
// empty string when the date is unknown.
func (e WatchlistEntry) Year() string {
	if e.ReleaseDate == "" {
		return ""
	}
	return strings.SplitN(e.ReleaseDate, "-", 2)[0]
}
