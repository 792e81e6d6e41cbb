package service

import (
	"math"
	"sort"

	"mira/internal/config"
	"mira/internal/model"
	"mira/internal/utils"
)

// Match reason constants
const (
	ReasonBudgetMatch    = "Close to budget"
	ReasonBedroomsMatch  = "Bedrooms match"
	ReasonAmenitiesMatch = "Amenities match"
	ReasonWellEquipped   = "Well equipped"
	ReasonSpacious       = "Spacious"
	ReasonGeneralMatch   = "General match"
)

// Default scoring constants
const (
	DefaultBudgetWeight          = 30.0
	DefaultBedroomWeight         = 25.0
	DefaultAmenityMatchWeight    = 10.0
	DefaultAmenityRichnessWeight = 2.0
	DefaultSizeDivisor           = 500.0
	DefaultSizeCap               = 10.0
)

// RankWeights holds the heuristic scoring constants
type RankWeights struct {
	Budget          float64
	Bedroom         float64
	AmenityMatch    float64
	AmenityRichness float64
	SizeDivisor     float64
	SizeCap         float64
}

// DefaultRankWeights returns the built-in scoring constants
func DefaultRankWeights() RankWeights {
	return RankWeights{
		Budget:          DefaultBudgetWeight,
		Bedroom:         DefaultBedroomWeight,
		AmenityMatch:    DefaultAmenityMatchWeight,
		AmenityRichness: DefaultAmenityRichnessWeight,
		SizeDivisor:     DefaultSizeDivisor,
		SizeCap:         DefaultSizeCap,
	}
}

// WithTuning returns w with any overrides from t applied
func (w RankWeights) WithTuning(t *config.Tuning) RankWeights {
	if t == nil {
		return w
	}
	override := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	override(&w.Budget, t.BudgetWeight)
	override(&w.Bedroom, t.BedroomWeight)
	override(&w.AmenityMatch, t.AmenityMatchWeight)
	override(&w.AmenityRichness, t.AmenityRichnessWeight)
	override(&w.SizeDivisor, t.SizeDivisor)
	override(&w.SizeCap, t.SizeCap)
	return w
}

// Ranker handles ranking and scoring of filtered listings
type Ranker struct {
	weights RankWeights
}

// NewRanker creates a new ranker with the given weights
func NewRanker(weights RankWeights) *Ranker {
	return &Ranker{weights: weights}
}

// RankResults scores listings and orders them by descending score.
// Equal scores keep their input order.
func (r *Ranker) RankResults(listings []model.Listing, prefs *model.Preferences) []model.ListingSearchResult {
	results := make([]model.ListingSearchResult, 0, len(listings))

	for _, listing := range listings {
		budgetScore := r.budgetScore(listing, prefs)
		bedroomScore := r.bedroomScore(listing, prefs)
		matchedAmenities := utils.CountContainedAmenities(prefs.Amenities, listing.Amenities)
		sizeScore := r.sizeScore(listing)

		score := budgetScore +
			bedroomScore +
			r.weights.AmenityMatch*float64(matchedAmenities) +
			r.weights.AmenityRichness*float64(len(listing.Amenities)) +
			sizeScore

		results = append(results, model.ListingSearchResult{
			Listing:        listing,
			Score:          score,
			MatchedReasons: r.generateMatchedReasons(listing, budgetScore, bedroomScore, matchedAmenities, sizeScore),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// budgetScore rewards prices close to the target, scaled to the budget weight
func (r *Ranker) budgetScore(l model.Listing, p *model.Preferences) float64 {
	target, ok := p.BudgetTarget()
	if !ok || target <= 0 {
		return 0
	}
	deviation := math.Min(math.Abs(l.Price-target)/target, 1)
	return (1 - deviation) * r.weights.Budget
}

// bedroomScore consults the exact count first, the range maximum otherwise
func (r *Ranker) bedroomScore(l model.Listing, p *model.Preferences) float64 {
	switch {
	case p.Bedrooms != nil:
		if l.Bedrooms == *p.Bedrooms {
			return r.weights.Bedroom
		}
	case p.MaxBedrooms != nil:
		if l.Bedrooms == *p.MaxBedrooms {
			return r.weights.Bedroom
		}
	}
	return 0
}

func (r *Ranker) sizeScore(l model.Listing) float64 {
	if l.SizeSqft <= 0 || r.weights.SizeDivisor <= 0 {
		return 0
	}
	return math.Min(l.SizeSqft/r.weights.SizeDivisor, r.weights.SizeCap)
}

// generateMatchedReasons generates human-readable reasons for a listing's score
func (r *Ranker) generateMatchedReasons(
	l model.Listing,
	budgetScore float64,
	bedroomScore float64,
	matchedAmenities int,
	sizeScore float64,
) []string {
	reasons := []string{}

	if r.weights.Budget > 0 && budgetScore >= 0.8*r.weights.Budget {
		reasons = append(reasons, ReasonBudgetMatch)
	}
	if bedroomScore > 0 {
		reasons = append(reasons, ReasonBedroomsMatch)
	}
	if matchedAmenities > 0 {
		reasons = append(reasons, ReasonAmenitiesMatch)
	}
	if len(l.Amenities) >= 5 {
		reasons = append(reasons, ReasonWellEquipped)
	}
	if r.weights.SizeCap > 0 && sizeScore >= r.weights.SizeCap {
		reasons = append(reasons, ReasonSpacious)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}

	return reasons
}
