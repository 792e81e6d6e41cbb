package service

import (
	"context"
	"sync/atomic"
	"time"

	"mira/internal/model"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// sampleCatalog returns a fresh copy of a small mixed catalog
func sampleCatalog() []model.Listing {
	return []model.Listing{
		{ID: 1, Title: "Modern Condo", Price: 480000, Location: "Miami, FL", Bedrooms: 2, Bathrooms: 2, SizeSqft: 1000, Amenities: model.JSONArray{"Pool", "Parking"}},
		{ID: 2, Title: "Family House", Price: 400000, Location: "Miami, FL", Bedrooms: 3, Bathrooms: 1, SizeSqft: 1500, Amenities: model.JSONArray{"Gym"}},
		{ID: 3, Title: "Loft", Description: strPtr("Bright condo loft downtown"), Price: 900000, Location: "New York, NY", Bedrooms: 2, Bathrooms: 2, SizeSqft: 900, Amenities: model.JSONArray{"Swimming Pool", "Garage"}},
		{ID: 4, Title: "Ranch", Price: 650000, Location: "Austin, TX", Bedrooms: 4, Bathrooms: 3, SizeSqft: 2600, Amenities: model.JSONArray{}},
	}
}

// fakeProvider is a scriptable Provider
type fakeProvider struct {
	name        string
	unavailable bool
	prefs       *model.Preferences
	err         error
	delay       time.Duration
	reply       string
	genErr      error
	genDelay    time.Duration

	extractCalls  atomic.Int32
	generateCalls atomic.Int32
	lastGenerate  atomic.Pointer[ResponseRequest]
}

func (f *fakeProvider) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeProvider) Available() bool { return !f.unavailable }

func (f *fakeProvider) Extract(ctx context.Context, _ ExtractRequest) (*model.Preferences, error) {
	f.extractCalls.Add(1)
	if err := wait(ctx, f.delay); err != nil {
		return nil, err
	}
	if f.prefs == nil {
		return nil, f.err
	}
	return f.prefs.Clone(), f.err
}

func (f *fakeProvider) Generate(ctx context.Context, req ResponseRequest) (string, error) {
	f.generateCalls.Add(1)
	f.lastGenerate.Store(&req)
	if err := wait(ctx, f.genDelay); err != nil {
		return "", err
	}
	return f.reply, f.genErr
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// staticCatalog is a ListingSource over a fixed slice
type staticCatalog struct {
	listings []model.Listing
	err      error
}

func (c *staticCatalog) ListAll(context.Context) ([]model.Listing, error) {
	return c.listings, c.err
}
