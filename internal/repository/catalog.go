package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"mira/internal/model"
)

// ErrListingNotFound is returned by Get for unknown ids
var ErrListingNotFound = errors.New("listing not found")

// Source loads the merged listing set from its backing store
type Source interface {
	Name() string
	Load(ctx context.Context) ([]model.Listing, error)
}

// Catalog memoises the first successful load of a Source. It is never
// refreshed; a failed load is retried on the next call.
type Catalog struct {
	source Source

	mu       sync.Mutex
	loaded   bool
	listings []model.Listing
	byID     map[int64]int
}

// NewCatalog creates a catalog over source
func NewCatalog(source Source) *Catalog {
	return &Catalog{source: source}
}

// ListAll returns every listing. Callers must not modify the result.
func (c *Catalog) ListAll(ctx context.Context) ([]model.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.listings, nil
	}

	listings, err := c.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", c.source.Name(), err)
	}

	c.byID = make(map[int64]int, len(listings))
	for i, l := range listings {
		c.byID[l.ID] = i
	}
	c.listings = listings
	c.loaded = true

	log.Info().Str("source", c.source.Name()).Int("listings", len(listings)).Msg("catalog loaded")
	return c.listings, nil
}

// Get returns the listing with the given id
func (c *Catalog) Get(ctx context.Context, id int64) (*model.Listing, error) {
	listings, err := c.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	idx, ok := c.byID[id]
	c.mu.Unlock()
	if !ok {
		return nil, ErrListingNotFound
	}

	listing := listings[idx]
	return &listing, nil
}
