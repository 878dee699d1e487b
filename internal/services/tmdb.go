// TMDB API implementation of [CatalogAPI]
//
// Response types based on https://developer.themoviedb.org/reference
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/shared"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

var _ CatalogAPI = (*TMDBService)(nil)

// tmdbMovie represents a movie object in TMDB responses.
type tmdbMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

// tmdbPage represents a paginated TMDB response.
type tmdbPage struct {
	Page         int         `json:"page"`
	Results      []tmdbMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

// TMDBService implements [CatalogAPI] against the TMDB v3 API.
//
// Requests carry a bearer token via an [oauth2] static token source and pass
// through a client-side [rate.Limiter] to stay under TMDB's request caps.
type TMDBService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewTMDBService creates a TMDB client with the given read access token.
//
// A nil client gets an oauth2 bearer transport built from the token. Requests
// per second defaults to 4 when rps is zero or negative.
func NewTMDBService(accessToken string, rps float64, client *http.Client) *TMDBService {
	if client == nil {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
		client = oauth2.NewClient(context.Background(), src)
	}
	if rps <= 0 {
		rps = 4
	}

	return &TMDBService{
		baseURL:    tmdbBaseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// doRequest performs a rate-limited GET against the TMDB API.
func (s *TMDBService) doRequest(ctx context.Context, path string, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: TMDB status %d", shared.ErrProvider, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// SearchMovies searches the catalog by title.
func (s *TMDBService) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	path := "/search/movie?query=" + url.QueryEscape(query)

	var page tmdbPage
	if err := s.doRequest(ctx, path, &page); err != nil {
		return nil, err
	}

	return moviesFromPage(page), nil
}

// PopularMovies retrieves the current most popular movies.
func (s *TMDBService) PopularMovies(ctx context.Context) ([]models.Movie, error) {
	path := "/discover/movie?sort_by=popularity.desc"

	var page tmdbPage
	if err := s.doRequest(ctx, path, &page); err != nil {
		return nil, err
	}

	return moviesFromPage(page), nil
}

// MovieDetails retrieves a single movie by its TMDB ID.
func (s *TMDBService) MovieDetails(ctx context.Context, movieID int) (*models.Movie, error) {
	path := fmt.Sprintf("/movie/%d", movieID)

	var m tmdbMovie
	if err := s.doRequest(ctx, path, &m); err != nil {
		return nil, err
	}

	movie := m.toMovie()
	return &movie, nil
}

func (m tmdbMovie) toMovie() models.Movie {
	return models.Movie{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
		VoteAverage: m.VoteAverage,
		ReleaseDate: m.ReleaseDate,
	}
}

func moviesFromPage(page tmdbPage) []models.Movie {
	movies := make([]models.Movie, 0, len(page.Results))
	for _, m := range page.Results {
		movies = append(movies, m.toMovie())
	}
	return movies
}
