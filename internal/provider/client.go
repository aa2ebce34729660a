package provider

import (
	"context"
	"encoding/json"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
)

// Client is a library manager that can list its queue, search its catalog
// and add new entries. Radarr backs movies and Sonarr backs shows.
type Client interface {
	// Name identifies the backing service for logs and errors.
	Name() string

	// List returns the library, filtered to titles containing filterTitle
	// (case-insensitive) when it is non-empty.
	List(ctx context.Context, filterTitle string) ([]media.MediaResult, error)

	// Search looks up titles not necessarily in the library, in remote order.
	Search(ctx context.Context, query string) ([]media.MediaResult, error)

	// Add creates a monitored library entry and triggers a download search.
	Add(ctx context.Context, result media.MediaResult) (*AddOutcome, error)
}

// AddOutcome is the library manager's echo of a created entry.
type AddOutcome struct {
	ID    int             `json:"id"`
	Title string          `json:"title"`
	Path  string          `json:"path,omitempty"`
	Raw   json.RawMessage `json:"-"`
}

// Factory builds a Client from its connection settings.
type Factory func(cfg config.ProviderConfig) (Client, error)
