package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/vaporisers/reelist/internal/formatter"
	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/shared"
)

// WatchlistList prints the signed-in user's saved movies, most recent first.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	identity, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	if err := r.watchlist.Load(ctx, identity.ID); err != nil {
		return err
	}

	entries := r.watchlist.Entries()

	if useJSON {
		return r.writeJSON(entries, pretty)
	}

	if len(entries) == 0 {
		return r.writePlain("Watchlist is empty\n")
	}

	r.writePlain("Watchlist for %s (%d movies)\n\n", identity.Email, len(entries))
	for i, entry := range entries {
		yearPart := ""
		if year := entry.Year(); year != "" {
			yearPart = fmt.Sprintf(" (%s)", year)
		}
		r.writePlain("%d. %s%s [%.1f] saved %s\n", i+1, entry.Title, yearPart, entry.VoteAverage, entry.SavedAt.Format("2006-01-02"))
	}
	return nil
}

// WatchlistAdd looks a movie up in the catalog and saves it.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	movieID := int(cmd.IntArg("id"))
	if movieID == 0 {
		return fmt.Errorf("%w: movie ID is required", shared.ErrMissingArgument)
	}

	identity, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	if r.catalog == nil {
		return fmt.Errorf("%w: movie catalog not initialized", shared.ErrServiceUnavailable)
	}

	movie, err := r.catalog.MovieDetails(ctx, movieID)
	if err != nil {
		return fmt.Errorf("failed to look up movie %d: %w", movieID, err)
	}

	entry := models.WatchlistEntry{
		MovieID:     movie.ID,
		Title:       movie.Title,
		PosterPath:  movie.PosterPath,
		VoteAverage: movie.VoteAverage,
		ReleaseDate: movie.ReleaseDate,
	}

	if err := r.watchlist.Add(ctx, entry, identity.ID); err != nil {
		return err
	}

	r.writePlain("✓ Saved '%s'\n", movie.Title)
	return nil
}

// WatchlistRemove removes a saved movie. Removing a movie that is not saved
// reports success without touching anything.
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	movieID := int(cmd.IntArg("id"))
	if movieID == 0 {
		return fmt.Errorf("%w: movie ID is required", shared.ErrMissingArgument)
	}

	identity, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	if err := r.watchlist.Remove(ctx, movieID, identity.ID); err != nil {
		return err
	}

	r.writePlain("✓ Removed movie %d\n", movieID)
	return nil
}

// WatchlistExport writes the watchlist to a file in the requested format.
func (r *Runner) WatchlistExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	switch format {
	case "csv", "markdown", "md", "text", "txt", "json":
	default:
		return fmt.Errorf("%w: --format must be csv, markdown, text, or json, got %q", shared.ErrInvalidFlag, format)
	}

	identity, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	if err := r.watchlist.Load(ctx, identity.ID); err != nil {
		return err
	}

	result, err := formatter.WriteExport(r.watchlist.Entries(), identity.Email, format, output)
	if err != nil {
		return err
	}

	r.writePlain("✓ Watchlist exported to %s\n", result.File)
	return nil
}
