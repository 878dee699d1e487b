// Package models defines domain entities for the reelist movie watchlist client.
//
// The package contains three categories of types:
//
// 1. Session types: the authenticated identity and its locally persisted credentials
//   - [Identity] : the signed-in user's id, name and email
//   - [StoredSession] : session secret persisted between CLI invocations
//
// 2. Watchlist types: the in-memory mirror of the remote saved-movies collection
//   - [WatchlistEntry] : one saved movie scoped to a user
//   - [TrendingMovie] : aggregated search counter row
//
// 3. Catalog types: movie metadata fetched from TMDB
//   - [Movie] : search/discover result with poster and rating
//
// Watchlist state is only trusted immediately after a fresh read from the remote
// store; see the stores package for the reload-after-write policy.
package models
