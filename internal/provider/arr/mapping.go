package arr

import (
	"encoding/json"
	"strings"

	"github.com/Digital-Shane/libby/internal/media"
)

// Resource is the subset of a Radarr movie or Sonarr series resource that
// libby reads. Lookup results share the same shape.
type Resource struct {
	ID               int               `json:"id,omitempty"`
	Title            string            `json:"title"`
	TitleSlug        string            `json:"titleSlug"`
	Year             int               `json:"year"`
	TmdbID           int               `json:"tmdbId,omitempty"`
	TvdbID           int               `json:"tvdbId,omitempty"`
	ImdbID           string            `json:"imdbId,omitempty"`
	Images           []media.Image     `json:"images"`
	Status           string            `json:"status,omitempty"`
	QualityProfileID int               `json:"qualityProfileId"`
	Seasons          []json.RawMessage `json:"seasons,omitempty"`
}

// ToMediaResult maps a resource onto a MediaResult. externalID is the id the
// service keys new entries on; label is the resolved quality profile name.
func (r Resource) ToMediaResult(externalID, label string) media.MediaResult {
	result := media.MediaResult{
		Title:        r.Title,
		Slug:         r.TitleSlug,
		ExternalID:   externalID,
		Images:       r.Images,
		QualityLabel: label,
		Seasons:      r.Seasons,
	}
	if r.Year != 0 {
		result.Year = media.IntPtr(r.Year)
	}
	if r.ImdbID != "" {
		result.IMDbID = media.StringPtr(r.ImdbID)
	}
	if r.Status != "" {
		result.Status = media.StringPtr(r.Status)
	}
	return result
}

// FilterByTitle keeps results whose title contains title, ignoring case.
func FilterByTitle(results []media.MediaResult, title string) []media.MediaResult {
	if title == "" {
		return results
	}
	needle := strings.ToLower(title)
	filtered := make([]media.MediaResult, 0, len(results))
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.Title), needle) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
