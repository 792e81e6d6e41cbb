package service

import (
	"strings"

	"mira/internal/model"
)

// NormalizePreferences returns the canonical form of a raw extraction result.
// The input is not modified.
//
// Strings are trimmed and blanks dropped, amenities are lower-cased and
// de-duplicated, non-positive budgets and negative counts are discarded.
// A greeting carrying criteria becomes a search; a record with no criteria
// becomes a greeting with everything else cleared.
func NormalizePreferences(raw *model.Preferences) *model.Preferences {
	if raw == nil {
		return &model.Preferences{Intent: model.IntentGreeting}
	}
	p := raw.Clone()

	p.Location = cleanString(p.Location)
	p.PropertyType = cleanString(p.PropertyType)
	p.Budget = positive(p.Budget)
	p.MinBudget = positive(p.MinBudget)
	p.MaxBudget = positive(p.MaxBudget)
	p.Bedrooms = nonNegative(p.Bedrooms)
	p.MinBedrooms = nonNegative(p.MinBedrooms)
	p.MaxBedrooms = nonNegative(p.MaxBedrooms)
	p.Bathrooms = nonNegative(p.Bathrooms)
	p.Amenities = lowerUnique(p.Amenities)
	p.Keywords = trimNonEmpty(p.Keywords)
	p.Intent = model.ParseIntent(string(p.Intent))

	if !p.HasCriteria() {
		p.Intent = model.IntentGreeting
		p.ClearCriteria()
		return p
	}
	if p.Intent == model.IntentGreeting {
		p.Intent = model.IntentSearch
	}
	return p
}

func cleanString(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func nonNegative(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

func lowerUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		s := strings.ToLower(strings.TrimSpace(v))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func trimNonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
