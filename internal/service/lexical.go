package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"mira/internal/model"
)

// shortMessageLimit is the length below which a message with no digits and
// no property vocabulary is treated as small talk
const shortMessageLimit = 15

var (
	budgetPattern  = regexp.MustCompile(`\b(?:under|below|less than|up to|max)\s*\$?\s*(\d[\d,]*(?:\.\d+)?)\s*(k|lakhs?|thousand|million|m)?\b`)
	rangePattern   = regexp.MustCompile(`\b(?:between|from)\s*\$?\s*(\d[\d,]*(?:\.\d+)?)\s*(k|thousand)?\s*(?:and|to|-)\s*\$?\s*(\d[\d,]*(?:\.\d+)?)\s*(k|thousand)?\b`)
	bedroomPattern = regexp.MustCompile(`\b(\d+)\s*(?:bhk|bed)`)

	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:in|at|near|around)\s+([a-z\s,]+?)(?:\s+with|\s+under|\s+below|\s+propert(?:y|ies)|$)`),
		regexp.MustCompile(`\bpropert(?:y|ies)\s+(?:in|at|near)\s+([a-z\s,]+?)(?:\s+with|\s+under|\s+below|$)`),
		regexp.MustCompile(`([a-z\s]+?)\s+(?:propert(?:y|ies)|apartments?|house|condo)`),
	}

	trailingPunct    = regexp.MustCompile(`[?!.;:]+$`)
	locationSplitter = regexp.MustCompile(`[\s,]+`)

	greetingOpener = regexp.MustCompile(`^(?:hi|hello|hey|greetings|good morning|good afternoon|good evening|howdy|sup)\b`)
	digitPattern   = regexp.MustCompile(`\d`)
	propertyVocab  = regexp.MustCompile(`bhk|bed|room|location|property`)
)

// amenityVocabulary is scanned in order; a message may hit several entries
var amenityVocabulary = []string{
	"parking", "gym", "pool", "swimming pool", "garden", "balcony", "security", "elevator", "terrace",
}

// locationStopWords are never accepted as a location on their own.
// A candidate made up only of these words is rejected.
var locationStopWords = map[string]bool{
	"any": true, "the": true, "for": true, "rental": true, "rent": true, "sale": true, "buy": true,
	"a": true, "an": true, "all": true, "me": true, "show": true, "find": true, "some": true,
	"bed": true, "beds": true, "bedroom": true, "bedrooms": true, "bhk": true,
	"luxury": true, "cheap": true, "affordable": true, "modern": true, "new": true,
	"big": true, "small": true, "large": true, "family": true,
}

// LexicalExtractor is the dependency-free, always-available extraction tier
type LexicalExtractor struct{}

// NewLexicalExtractor creates a lexical extractor
func NewLexicalExtractor() *LexicalExtractor {
	return &LexicalExtractor{}
}

// Extract parses message into raw preferences. hasHistory biases short
// messages towards search instead of greeting.
func (e *LexicalExtractor) Extract(message string, hasHistory bool) *model.Preferences {
	prefs := &model.Preferences{}
	lower := strings.ToLower(message)

	if m := budgetPattern.FindStringSubmatch(lower); m != nil {
		if amount, ok := parseAmount(m[1], unitMultiplier(m[2])); ok {
			prefs.Budget = &amount
		}
	}

	if m := rangePattern.FindStringSubmatch(lower); m != nil {
		mult := 1.0
		if m[2] != "" || m[4] != "" {
			mult = 1000
		}
		lo, okLo := parseAmount(m[1], mult)
		hi, okHi := parseAmount(m[3], mult)
		if okLo && okHi {
			prefs.MinBudget = &lo
			prefs.MaxBudget = &hi
		}
	}

	if m := bedroomPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			prefs.Bedrooms = &n
		}
	}

	if loc, ok := extractLocation(lower); ok {
		prefs.Location = &loc
	}

	for _, amenity := range amenityVocabulary {
		if strings.Contains(lower, amenity) {
			prefs.Amenities = append(prefs.Amenities, amenity)
		}
	}

	prefs.Intent = lexicalIntent(message, hasHistory)
	return prefs
}

// IsExplicitGreeting reports whether message opens with a greeting word
func IsExplicitGreeting(message string) bool {
	return greetingOpener.MatchString(strings.ToLower(strings.TrimSpace(message)))
}

func lexicalIntent(message string, hasHistory bool) model.Intent {
	trimmed := strings.ToLower(strings.TrimSpace(message))
	if greetingOpener.MatchString(trimmed) {
		return model.IntentGreeting
	}

	smallTalk := utf8.RuneCountInString(trimmed) < shortMessageLimit &&
		!digitPattern.MatchString(trimmed) &&
		!propertyVocab.MatchString(trimmed)
	if smallTalk && !hasHistory {
		return model.IntentGreeting
	}
	return model.IntentSearch
}

func extractLocation(lower string) (string, bool) {
	text := trailingPunct.ReplaceAllString(strings.TrimSpace(lower), "")
	for _, pattern := range locationPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := strings.Trim(strings.TrimSpace(m[1]), ", ")
		if utf8.RuneCountInString(candidate) > 2 && !onlyStopWords(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func onlyStopWords(candidate string) bool {
	for _, word := range locationSplitter.Split(candidate, -1) {
		if word != "" && !locationStopWords[word] {
			return false
		}
	}
	return true
}

func unitMultiplier(unit string) float64 {
	switch {
	case strings.HasPrefix(unit, "lakh"):
		return 100_000
	case unit == "k" || unit == "thousand":
		return 1_000
	case unit == "m" || unit == "million":
		return 1_000_000
	default:
		return 1
	}
}

func parseAmount(digits string, multiplier float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return math.Round(v * multiplier), true
}
