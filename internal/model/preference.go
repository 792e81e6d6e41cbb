package model

import "strings"

// Intent is the primary goal behind a user message
type Intent string

const (
	IntentSearch     Intent = "search"
	IntentBrowse     Intent = "browse"
	IntentCompare    Intent = "compare"
	IntentGetDetails Intent = "get_details"
	IntentGreeting   Intent = "greeting"
)

// ParseIntent maps free text onto the closed intent set.
// Anything unrecognised is treated as a search.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentBrowse:
		return IntentBrowse
	case IntentCompare:
		return IntentCompare
	case IntentGetDetails:
		return IntentGetDetails
	case IntentGreeting:
		return IntentGreeting
	default:
		return IntentSearch
	}
}

// Preferences represents the structured search criteria extracted from a conversation
type Preferences struct {
	Location     *string  `json:"location,omitempty"`
	Budget       *float64 `json:"budget,omitempty"`    // implicit maximum
	MinBudget    *float64 `json:"minBudget,omitempty"`
	MaxBudget    *float64 `json:"maxBudget,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`  // exact count
	MinBedrooms  *int     `json:"minBedrooms,omitempty"`
	MaxBedrooms  *int     `json:"maxBedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"` // at least
	PropertyType *string  `json:"propertyType,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Intent       Intent   `json:"intent"`
}

// HasCriteria reports whether any search-relevant field is populated.
// Keywords and intent do not count.
func (p *Preferences) HasCriteria() bool {
	return p.Location != nil ||
		p.Budget != nil ||
		p.MinBudget != nil ||
		p.MaxBudget != nil ||
		p.Bedrooms != nil ||
		p.MinBedrooms != nil ||
		p.MaxBedrooms != nil ||
		p.Bathrooms != nil ||
		p.PropertyType != nil ||
		len(p.Amenities) > 0
}

// ClearCriteria drops every field except intent
func (p *Preferences) ClearCriteria() {
	intent := p.Intent
	*p = Preferences{Intent: intent}
}

// Clone returns a deep copy so callers can normalise without aliasing
func (p *Preferences) Clone() *Preferences {
	c := *p
	c.Location = cloneString(p.Location)
	c.PropertyType = cloneString(p.PropertyType)
	c.Budget = cloneFloat(p.Budget)
	c.MinBudget = cloneFloat(p.MinBudget)
	c.MaxBudget = cloneFloat(p.MaxBudget)
	c.Bedrooms = cloneInt(p.Bedrooms)
	c.MinBedrooms = cloneInt(p.MinBedrooms)
	c.MaxBedrooms = cloneInt(p.MaxBedrooms)
	c.Bathrooms = cloneInt(p.Bathrooms)
	if p.Amenities != nil {
		c.Amenities = append([]string(nil), p.Amenities...)
	}
	if p.Keywords != nil {
		c.Keywords = append([]string(nil), p.Keywords...)
	}
	return &c
}

// BudgetTarget is the price the ranker measures proximity against
func (p *Preferences) BudgetTarget() (float64, bool) {
	if p.Budget != nil {
		return *p.Budget, true
	}
	if p.MaxBudget != nil {
		return *p.MaxBudget, true
	}
	return 0, false
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	i := *v
	return &i
}
