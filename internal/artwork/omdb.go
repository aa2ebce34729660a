package artwork

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/omdb"
)

// OMDb looks posters up on the Open Movie Database by IMDb id.
type OMDb struct {
	client *omdb.Client
}

// NewOMDb creates an OMDb source. A nil httpClient gets a 10 second timeout.
func NewOMDb(apiKey string, httpClient *http.Client) *OMDb {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OMDb{client: omdb.NewClient(apiKey, httpClient)}
}

func (o *OMDb) Name() string { return "omdb" }

func (o *OMDb) Supports(media.Kind) bool { return true }

// Poster needs an IMDb id; title searches on OMDb are too loose for cards.
func (o *OMDb) Poster(ctx context.Context, q Query) (string, error) {
	if q.IMDbID == "" {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	result, err := o.client.SearchByImdbID(omdb.QueryData{ImdbID: q.IMDbID})
	if err != nil {
		return "", err
	}

	var poster string
	switch r := result.(type) {
	case omdb.MovieResult:
		poster = r.Poster
	case *omdb.MovieResult:
		poster = r.Poster
	case omdb.SeriesResult:
		poster = r.Poster
	case *omdb.SeriesResult:
		poster = r.Poster
	}

	if poster == "" || strings.EqualFold(poster, "N/A") {
		return "", nil
	}
	return poster, nil
}
