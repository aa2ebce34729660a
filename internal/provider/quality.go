package provider

import (
	"context"
	"sync"

	"github.com/Digital-Shane/libby/internal/media"
)

// DefaultQualityID is the profile id used when the preferred profile is
// unknown. It is "Any" on a stock install.
const DefaultQualityID = 1

// QualityFetcher loads the quality profiles from the library manager.
type QualityFetcher func(ctx context.Context) ([]media.QualityProfile, error)

// QualityCache holds a client's quality profiles for the life of the client.
// Concurrent first loads may each fetch; the last one stored wins.
type QualityCache struct {
	fetch     QualityFetcher
	preferred string

	mu       sync.Mutex
	profiles []media.QualityProfile
	loaded   bool
}

// NewQualityCache creates a cache that loads profiles with fetch. preferred
// is the configured quality profile name and may be empty.
func NewQualityCache(fetch QualityFetcher, preferred string) *QualityCache {
	return &QualityCache{fetch: fetch, preferred: preferred}
}

// Load returns the cached profiles, fetching them on first use.
func (c *QualityCache) Load(ctx context.Context) ([]media.QualityProfile, error) {
	if profiles, ok := c.cached(); ok {
		return profiles, nil
	}

	profiles, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.profiles = profiles
	c.loaded = true
	c.mu.Unlock()

	return profiles, nil
}

func (c *QualityCache) cached() ([]media.QualityProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profiles, c.loaded
}

// Label returns the name of the first profile whose id is profileID or whose
// name is the preferred quality, or "" when nothing matches or the cache is
// still empty.
func (c *QualityCache) Label(profileID int) string {
	profiles, _ := c.cached()
	for _, p := range profiles {
		if p.ID == profileID || (c.preferred != "" && p.Name == c.preferred) {
			return p.Name
		}
	}
	return ""
}

// PreferredID returns the id of the preferred profile, or DefaultQualityID.
func (c *QualityCache) PreferredID(ctx context.Context) (int, error) {
	profiles, err := c.Load(ctx)
	if err != nil {
		return 0, err
	}
	if c.preferred == "" {
		return DefaultQualityID, nil
	}
	for _, p := range profiles {
		if p.Name == c.preferred {
			return p.ID, nil
		}
	}
	return DefaultQualityID, nil
}
