package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"mira/internal/config"
	"mira/internal/model"
	"mira/internal/utils"
)

// DefaultAmenityMatchThreshold is the share of requested amenities a listing must offer
const DefaultAmenityMatchThreshold = 0.70

var locationTermSplitter = regexp.MustCompile(`[\s,]+`)

// CatalogFilter selects the listings satisfying every populated preference
type CatalogFilter struct {
	amenityThreshold float64
}

// NewCatalogFilter creates a filter with the given amenity match threshold
func NewCatalogFilter(amenityThreshold float64) *CatalogFilter {
	return &CatalogFilter{amenityThreshold: amenityThreshold}
}

// NewCatalogFilterFromTuning applies tuning overrides to the default threshold
func NewCatalogFilterFromTuning(t *config.Tuning) *CatalogFilter {
	threshold := DefaultAmenityMatchThreshold
	if t != nil && t.AmenityMatchThreshold != nil {
		threshold = *t.AmenityMatchThreshold
	}
	return NewCatalogFilter(threshold)
}

// Filter returns the matching listings in their original order. Neither
// argument is modified.
func (f *CatalogFilter) Filter(listings []model.Listing, prefs *model.Preferences) []model.Listing {
	terms := locationTerms(prefs)
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if f.matches(l, prefs, terms) {
			out = append(out, l)
		}
	}
	return out
}

func (f *CatalogFilter) matches(l model.Listing, p *model.Preferences, terms []string) bool {
	if p.MinBudget != nil && l.Price < *p.MinBudget {
		return false
	}
	if p.MaxBudget != nil && l.Price > *p.MaxBudget {
		return false
	}
	if p.Budget != nil && l.Price > *p.Budget {
		return false
	}

	if len(terms) > 0 && !matchesAnyTerm(l.Location, terms) {
		return false
	}

	// Exact and range bedroom constraints are independent and both apply.
	if p.MinBedrooms != nil && l.Bedrooms < *p.MinBedrooms {
		return false
	}
	if p.MaxBedrooms != nil && l.Bedrooms > *p.MaxBedrooms {
		return false
	}
	if p.Bedrooms != nil && l.Bedrooms != *p.Bedrooms {
		return false
	}

	if p.Bathrooms != nil && l.Bathrooms < *p.Bathrooms {
		return false
	}

	if p.PropertyType != nil && !mentionsPropertyType(l, *p.PropertyType) {
		return false
	}

	if len(p.Amenities) > 0 && utils.AmenityMatchRatio(p.Amenities, l.Amenities) < f.amenityThreshold {
		return false
	}

	return true
}

// locationTerms splits the requested location into terms longer than two
// characters. When none qualify the whole string is used as a single term.
func locationTerms(p *model.Preferences) []string {
	if p.Location == nil {
		return nil
	}
	whole := strings.ToLower(strings.TrimSpace(*p.Location))
	if whole == "" {
		return nil
	}
	var terms []string
	for _, term := range locationTermSplitter.Split(whole, -1) {
		if utf8.RuneCountInString(term) > 2 {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return []string{whole}
	}
	return terms
}

func matchesAnyTerm(location string, terms []string) bool {
	loc := strings.ToLower(location)
	for _, term := range terms {
		if strings.Contains(loc, term) {
			return true
		}
	}
	return false
}

func mentionsPropertyType(l model.Listing, propertyType string) bool {
	token := strings.ToLower(strings.TrimSpace(propertyType))
	if strings.Contains(strings.ToLower(l.Title), token) {
		return true
	}
	return l.Description != nil && strings.Contains(strings.ToLower(*l.Description), token)
}
