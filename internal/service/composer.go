package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"mira/internal/model"
)

// Output limits
const (
	MaxListings    = 12
	MaxSuggestions = 4
)

// Canned replies
const (
	GreetingMessage  = "👋 Hi! I'm Agent Mira, your AI real estate assistant. Tell me what you're looking for - budget, location, bedrooms, or amenities!"
	ClarifyMessage   = "Tell me a bit more about what you're looking for, such as a budget, a location or the number of bedrooms, and I'll pull up matching properties."
	NoResultsMessage = "I couldn't find any properties matching your criteria. Try adjusting your budget, location, or other preferences."
)

// minReplyLength is the shortest generated reply kept after greeting removal
const minReplyLength = 10

// GreetingSuggestions are offered whenever no search is run
var GreetingSuggestions = []string{
	"2 BHK under $500K",
	"Luxury properties with pool",
	"3 bedroom house",
	"Show properties in Miami",
}

var noResultSuggestions = []string{
	"Show all properties",
	"2 BHK under $500K",
	"Luxury properties",
	"Properties in Miami",
}

var alternateLocations = []string{"New York", "Miami", "California", "Texas", "Boston"}

var selfIntroductions = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)^(?:👋\s*)?(?:hi|hello|hey)!?,?\s*i'?m\s+(?:agent\s+)?mira[,.!]?\s*`), ""},
	{regexp.MustCompile(`(?i)i'?m\s+(?:agent\s+)?mira,?\s+your\s+(?:friendly\s+)?(?:ai\s+)?real\s+estate\s+assistant[.!]?\s*`), ""},
	{regexp.MustCompile(`(?i)i'?m\s+(?:agent\s+)?mira,?\s+and\s+i'?m\s+`), "I'm "},
}

// FallbackResponse is the templated reply used when no provider text is available
func FallbackResponse(prefs *model.Preferences, matchCount int) string {
	if matchCount == 0 {
		return NoResultsMessage
	}

	var criteria []string
	if prefs.Bedrooms != nil && *prefs.Bedrooms > 0 {
		noun := "bedroom"
		if *prefs.Bedrooms > 1 {
			noun = "bedrooms"
		}
		criteria = append(criteria, fmt.Sprintf("%d %s", *prefs.Bedrooms, noun))
	}
	if prefs.Budget != nil {
		criteria = append(criteria, "under "+thousands(*prefs.Budget))
	}
	if prefs.MaxBudget != nil {
		criteria = append(criteria, "under "+thousands(*prefs.MaxBudget))
	}
	if prefs.Location != nil {
		criteria = append(criteria, "in "+*prefs.Location)
	}
	if len(prefs.Amenities) > 0 {
		criteria = append(criteria, "with "+strings.Join(prefs.Amenities, ", "))
	}

	text := "your criteria"
	if len(criteria) > 0 {
		text = strings.Join(criteria, " ")
	}

	noun := "properties"
	if matchCount == 1 {
		noun = "property"
	}
	return fmt.Sprintf("I found %d %s matching %s. Check them out below!", matchCount, noun, text)
}

// StripSelfIntroduction removes the assistant introducing itself again.
// The second result is false when too little text survives to be useful.
func StripSelfIntroduction(reply string) (string, bool) {
	for _, intro := range selfIntroductions {
		reply = intro.pattern.ReplaceAllString(reply, intro.replacement)
	}
	reply = strings.TrimSpace(reply)
	return reply, utf8.RuneCountInString(reply) >= minReplyLength
}

// Suggestions derives follow-up prompts from the preferences and result count
func Suggestions(prefs *model.Preferences, matchCount int) []string {
	if matchCount == 0 {
		return append([]string(nil), noResultSuggestions...)
	}

	var out []string
	if prefs.Bedrooms != nil {
		out = append(out, fmt.Sprintf("Show %d bedroom options", *prefs.Bedrooms+1))
	}
	if prefs.Location != nil {
		current := strings.ToLower(*prefs.Location)
		for _, loc := range alternateLocations {
			if !strings.Contains(current, strings.ToLower(loc)) {
				out = append(out, "Similar properties in "+loc)
				break
			}
		}
	}
	if prefs.Budget != nil {
		relaxed := math.Round(*prefs.Budget*1.2/10000) * 10000
		out = append(out, "Under $"+humanize.Comma(int64(relaxed)))
	}
	out = append(out, "Show properties with pool", "Properties with parking")

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// thousands renders an amount as whole thousands, e.g. $500K
func thousands(amount float64) string {
	return "$" + strconv.FormatFloat(math.Round(amount/1000), 'f', 0, 64) + "K"
}
