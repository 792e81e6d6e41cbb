package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"mira/internal/model"
	"mira/internal/utils"
)

const extractionPromptBody = `You are an expert at understanding real estate queries. Extract property search preferences from user messages.

Extract the following information in JSON format:
- location: city, neighborhood, or area mentioned (string)
- budget: maximum budget if single value mentioned (number in dollars)
- minBudget: minimum budget for range (number in dollars)
- maxBudget: maximum budget for range (number in dollars)
- bedrooms: exact number of bedrooms (number)
- minBedrooms: minimum bedrooms for range (number)
- maxBedrooms: maximum bedrooms for range (number)
- bathrooms: minimum number of bathrooms (number)
- propertyType: type like "apartment", "house", "condo", "villa", "studio" (string)
- amenities: list of amenities like ["parking", "gym", "pool", "garden", "security"] (array)
- keywords: other important keywords or preferences (array)
- intent: one of "search", "browse", "compare", "get_details", "greeting" (string)

Budget conversion rules:
- "K" or "thousand" = multiply by 1,000
- "M" or "million" = multiply by 1,000,000
- "lakh" = multiply by 100,000

For ranges like "between X and Y" or "X to Y", use minBudget/maxBudget or minBedrooms/maxBedrooms.
For "under", "below", "less than", "up to" use only budget or maxBudget.
For "above", "over", "more than" use minBudget.

IMPORTANT: If the message is just a greeting (hi, hello, hey, etc.) or incomplete text without property details, set intent to "greeting" and leave all other fields null.`

const ongoingExtractionRule = `IMPORTANT: This is part of an ongoing conversation. Do NOT set intent to "greeting" unless the user is explicitly saying hello/hi and nothing else. If they are asking about properties or continuing the conversation, set intent to "search".`

// extractionPrompt returns the instruction payload sent with every extraction call
func extractionPrompt(midConversation bool) string {
	if midConversation {
		return ongoingExtractionRule + "\n\n" + extractionPromptBody
	}
	return extractionPromptBody
}

// responsePrompt returns the persona instructions for reply generation
func responsePrompt(prefs *model.Preferences, matchCount int, midConversation bool) string {
	var b strings.Builder
	b.WriteString(`You are Agent Mira, a friendly and professional AI real estate assistant. Generate natural, conversational responses based on property search results.

Guidelines:
- Be warm, helpful, and professional
- Keep responses concise (2-3 sentences max)
- Mention specific search criteria when relevant
- If no matches found, suggest adjusting criteria
- Use emojis sparingly (1-2 per message maximum)
`)
	if midConversation {
		b.WriteString(`- CRITICAL: This is an ONGOING conversation. NEVER say "Hi I'm Mira" or "Hi! I'm" or introduce yourself
- Continue naturally from the previous context
- Reference what the user said previously if relevant
`)
	} else {
		b.WriteString("- For first-time greetings, introduce yourself warmly\n")
	}
	b.WriteString("- Sound human and conversational, not robotic\n\nPreference details provided:\n")

	encoded, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		encoded = []byte("{}")
	}
	b.Write(encoded)
	fmt.Fprintf(&b, "\n\nNumber of matching properties: %d", matchCount)
	return b.String()
}

// transcript renders turns as plain text for single-prompt backends
func transcript(history []model.ConversationTurn) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nConversation history:\n")
	for _, turn := range history {
		speaker := "Assistant"
		if strings.EqualFold(turn.Role, model.RoleUser) {
			speaker = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, turn.Content)
	}
	b.WriteString("\n")
	return b.String()
}

// providerPayload mirrors the JSON object hosted providers return.
// Counts are decoded as numbers and rounded since models emit 2.0 as readily as 2.
type providerPayload struct {
	Location     *string  `json:"location"`
	Budget       *float64 `json:"budget"`
	MinBudget    *float64 `json:"minBudget"`
	MaxBudget    *float64 `json:"maxBudget"`
	Bedrooms     *float64 `json:"bedrooms"`
	MinBedrooms  *float64 `json:"minBedrooms"`
	MaxBedrooms  *float64 `json:"maxBedrooms"`
	Bathrooms    *float64 `json:"bathrooms"`
	PropertyType *string  `json:"propertyType"`
	Amenities    []string `json:"amenities"`
	Keywords     []string `json:"keywords"`
	Intent       *string  `json:"intent"`
}

// decodeProviderPreferences recovers, validates and converts a provider reply
func decodeProviderPreferences(content string) (*model.Preferences, error) {
	payload, err := utils.ExtractJSONPayload(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if err := utils.ValidatePreferencesPayload([]byte(payload)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	var raw providerPayload
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	prefs := &model.Preferences{
		Location:     raw.Location,
		Budget:       raw.Budget,
		MinBudget:    raw.MinBudget,
		MaxBudget:    raw.MaxBudget,
		Bedrooms:     roundCount(raw.Bedrooms),
		MinBedrooms:  roundCount(raw.MinBedrooms),
		MaxBedrooms:  roundCount(raw.MaxBedrooms),
		Bathrooms:    roundCount(raw.Bathrooms),
		PropertyType: raw.PropertyType,
		Keywords:     raw.Keywords,
		Intent:       model.IntentSearch,
	}
	for _, a := range raw.Amenities {
		prefs.Amenities = append(prefs.Amenities, strings.ToLower(a))
	}
	if raw.Intent != nil {
		prefs.Intent = model.ParseIntent(*raw.Intent)
	}
	return prefs, nil
}

func roundCount(v *float64) *int {
	if v == nil {
		return nil
	}
	n := int(math.Round(*v))
	return &n
}
