package artwork

import (
	"context"
	"strconv"
	"time"

	"github.com/Digital-Shane/libby/internal/media"
	"github.com/ryanbradynd05/go-tmdb"
	"golang.org/x/time/rate"
)

const tmdbImageBase = "https://image.tmdb.org/t/p/w500"

// TMDBClient captures the go-tmdb methods used for poster lookup.
type TMDBClient interface {
	SearchMovie(name string, options map[string]string) (*tmdb.MovieSearchResults, error)
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	GetMovieInfo(id int, options map[string]string) (*tmdb.Movie, error)
}

// TMDB looks posters up on The Movie Database.
type TMDB struct {
	client   TMDBClient
	language string
	limiter  *rate.Limiter
}

// NewTMDB creates a TMDB source. TMDB allows roughly 40 requests every 10
// seconds per key.
func NewTMDB(apiKey, language string) *TMDB {
	client := tmdb.Init(tmdb.Config{
		APIKey:   apiKey,
		Proxies:  nil,
		UseProxy: false,
	})
	return NewTMDBWithClient(client, language)
}

// NewTMDBWithClient creates a TMDB source around an existing client.
func NewTMDBWithClient(client TMDBClient, language string) *TMDB {
	if language == "" {
		language = "en-US"
	}
	return &TMDB{
		client:   client,
		language: language,
		limiter:  rate.NewLimiter(rate.Every(10*time.Second/38), 5),
	}
}

func (t *TMDB) Name() string { return "tmdb" }

func (t *TMDB) Supports(media.Kind) bool { return true }

// Poster resolves a poster path. Movies from Radarr carry their TMDB id, so
// those skip the search.
func (t *TMDB) Poster(ctx context.Context, q Query) (string, error) {
	options := map[string]string{"language": t.language}

	if q.Kind == media.Movies {
		if id, err := strconv.Atoi(q.ExternalID); err == nil && id > 0 {
			if err := t.limiter.Wait(ctx); err != nil {
				return "", err
			}
			movie, err := t.client.GetMovieInfo(id, options)
			if err == nil && movie != nil && movie.PosterPath != "" {
				return tmdbImageBase + movie.PosterPath, nil
			}
		}

		if q.Year > 0 {
			options["year"] = strconv.Itoa(q.Year)
		}
		if err := t.limiter.Wait(ctx); err != nil {
			return "", err
		}
		results, err := t.client.SearchMovie(q.Title, options)
		if err != nil {
			return "", err
		}
		if results == nil {
			return "", nil
		}
		for _, r := range results.Results {
			if r.PosterPath != "" {
				return tmdbImageBase + r.PosterPath, nil
			}
		}
		return "", nil
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	results, err := t.client.SearchTv(q.Title, options)
	if err != nil {
		return "", err
	}
	if results == nil {
		return "", nil
	}
	for _, r := range results.Results {
		if r.PosterPath != "" {
			return tmdbImageBase + r.PosterPath, nil
		}
	}
	return "", nil
}
