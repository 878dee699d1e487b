package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/shared"
)

// MoviesSearch searches the catalog and records the term for trending.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	if r.catalog == nil {
		return fmt.Errorf("%w: movie catalog not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Infof("searching catalog for %q", query)

	movies, err := r.catalog.SearchMovies(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(movies) > 0 {
		if err := r.tracker.Record(ctx, query, movies[0]); err != nil {
			r.logger.Warn("failed to record search", "term", query, "error", err)
		}
	}

	if useJSON {
		return r.writeJSON(movies, pretty)
	}

	return r.printMovies(movies, fmt.Sprintf("Results for %q", query))
}

// MoviesPopular lists currently popular movies from the catalog.
func (r *Runner) MoviesPopular(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.catalog == nil {
		return fmt.Errorf("%w: movie catalog not initialized", shared.ErrServiceUnavailable)
	}

	movies, err := r.catalog.PopularMovies(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch popular movies: %w", err)
	}

	if useJSON {
		return r.writeJSON(movies, pretty)
	}

	return r.printMovies(movies, "Popular Movies")
}

// MoviesShow prints the details of a single movie.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	movieID := int(cmd.IntArg("id"))
	useJSON := cmd.Bool("json")

	if movieID == 0 {
		return fmt.Errorf("%w: movie ID is required", shared.ErrMissingArgument)
	}

	if r.catalog == nil {
		return fmt.Errorf("%w: movie catalog not initialized", shared.ErrServiceUnavailable)
	}

	movie, err := r.catalog.MovieDetails(ctx, movieID)
	if err != nil {
		return fmt.Errorf("failed to look up movie %d: %w", movieID, err)
	}

	if useJSON {
		return r.writeJSON(movie, true)
	}

	yearPart := ""
	if year := movie.Year(); year != "" {
		yearPart = fmt.Sprintf(" (%s)", year)
	}
	r.writePlain("%s%s\n", movie.Title, yearPart)
	r.writePlain("Rating: %.1f\n", movie.VoteAverage)
	if movie.Overview != "" {
		r.writePlainln("%s", movie.Overview)
	}
	r.writePlain("Poster: %s\n", models.PosterURL(movie.PosterPath))
	return nil
}

// MoviesTrending lists the most-searched movies across all users.
func (r *Runner) MoviesTrending(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	useJSON := cmd.Bool("json")

	trending, err := r.tracker.Trending(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch trending movies: %w", err)
	}

	if useJSON {
		return r.writeJSON(trending, true)
	}

	if len(trending) == 0 {
		return r.writePlain("No trending movies yet\n")
	}

	r.writePlain("Trending Movies\n\n")
	for i, movie := range trending {
		r.writePlain("%d. %s (%d searches)\n", i+1, movie.Title, movie.Count)
	}
	return nil
}

func (r *Runner) printMovies(movies []models.Movie, title string) error {
	if len(movies) == 0 {
		return r.writePlain("No movies found\n")
	}

	r.writePlain("%s\n\n", title)
	for i, movie := range movies {
		yearPart := ""
		if year := movie.Year(); year != "" {
			yearPart = fmt.Sprintf(" (%s)", year)
		}
		r.writePlain("%d. %s%s [%.1f] id=%d\n", i+1, movie.Title, yearPart, movie.VoteAverage, movie.ID)
	}
	return nil
}
