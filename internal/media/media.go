package media

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind selects which library a request targets.
type Kind string

const (
	Movies Kind = "movies"
	Shows  Kind = "shows"
)

// Kinds lists every supported library kind in display order.
var Kinds = []Kind{Movies, Shows}

// ParseKind maps user input such as "movie", "Shows" or "tv" onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film", "films":
		return Movies, nil
	case "show", "shows", "series", "tv":
		return Shows, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", s)
	}
}

// Noun returns the singular spoken noun for the kind.
func (k Kind) Noun() string {
	if k == Shows {
		return "show"
	}
	return "movie"
}

// Image is a single artwork entry as reported by the library manager.
type Image struct {
	CoverType string `json:"coverType"`
	URL       string `json:"url,omitempty"`
	RemoteURL string `json:"remoteUrl,omitempty"`
}

// MediaResult is a movie or show as returned by List or Search.
type MediaResult struct {
	Title        string            `json:"title"`
	Slug         string            `json:"slug"`
	Year         *int              `json:"year,omitempty"`
	ExternalID   string            `json:"externalId"`
	IMDbID       *string           `json:"imdbId,omitempty"`
	Images       []Image           `json:"images,omitempty"`
	Status       *string           `json:"status,omitempty"`
	QualityLabel string            `json:"quality"`
	Seasons      []json.RawMessage `json:"seasons,omitempty"`
}

// QualityProfile is a named quality preset configured in the library manager.
type QualityProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// YearString returns the year as text, or "" when unknown.
func (r MediaResult) YearString() string {
	if r.Year == nil || *r.Year == 0 {
		return ""
	}
	return strconv.Itoa(*r.Year)
}

// DisplayTitle renders "Title (Year)" when the year is known.
func (r MediaResult) DisplayTitle() string {
	if y := r.YearString(); y != "" {
		return fmt.Sprintf("%s (%s)", r.Title, y)
	}
	return r.Title
}

// Poster returns the best poster URL carried by the result itself.
func (r MediaResult) Poster() string {
	for _, img := range r.Images {
		if !strings.EqualFold(img.CoverType, "poster") {
			continue
		}
		if img.RemoteURL != "" {
			return img.RemoteURL
		}
		if strings.HasPrefix(img.URL, "http://") || strings.HasPrefix(img.URL, "https://") {
			return img.URL
		}
	}
	return ""
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
