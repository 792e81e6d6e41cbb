package utils

import (
	"strings"
)

// amenitySynonyms groups terms that describe the same amenity
var amenitySynonyms = [][]string{
	{"parking", "garage", "car park", "parking space"},
	{"gym", "fitness", "workout", "exercise"},
	{"pool", "swimming", "swimming pool"},
	{"security", "gated", "guard", "24/7 security"},
	{"garden", "lawn", "yard", "outdoor space"},
}

// AmenityContains reports whether either term contains the other, case-insensitively.
// Blank terms never match.
func AmenityContains(requested, offered string) bool {
	r := strings.ToLower(strings.TrimSpace(requested))
	o := strings.ToLower(strings.TrimSpace(offered))
	if r == "" || o == "" {
		return false
	}
	return strings.Contains(o, r) || strings.Contains(r, o)
}

// AmenitySynonym reports whether both terms mention members of the same synonym group
func AmenitySynonym(requested, offered string) bool {
	r := strings.ToLower(strings.TrimSpace(requested))
	o := strings.ToLower(strings.TrimSpace(offered))
	if r == "" || o == "" {
		return false
	}
	for _, group := range amenitySynonyms {
		if mentionsAny(r, group) && mentionsAny(o, group) {
			return true
		}
	}
	return false
}

// FuzzyMatchAmenity performs fuzzy matching for amenity names,
// by containment in either direction or by synonym group
func FuzzyMatchAmenity(requested, offered string) bool {
	return AmenityContains(requested, offered) || AmenitySynonym(requested, offered)
}

// AmenityMatchRatio returns the fraction of requested amenities that have a
// fuzzy match among the offered ones. An empty request yields 1.
func AmenityMatchRatio(requested, offered []string) float64 {
	if len(requested) == 0 {
		return 1
	}
	matched := 0
	for _, want := range requested {
		for _, have := range offered {
			if FuzzyMatchAmenity(want, have) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(requested))
}

// CountContainedAmenities counts requested amenities with a containment
// match among the offered ones. Synonyms are not consulted.
func CountContainedAmenities(requested, offered []string) int {
	count := 0
	for _, want := range requested {
		for _, have := range offered {
			if AmenityContains(want, have) {
				count++
				break
			}
		}
	}
	return count
}

func mentionsAny(term string, group []string) bool {
	for _, member := range group {
		if strings.Contains(term, member) {
			return true
		}
	}
	return false
}
