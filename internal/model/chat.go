package model

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one prior message supplied as context
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the POST /api/chat body
type ChatRequest struct {
	Message             string             `json:"message" binding:"required"`
	ConversationHistory []ConversationTurn `json:"conversationHistory"`
}

// ChatResponse represents the POST /api/chat reply
type ChatResponse struct {
	Message     string                `json:"message"`
	Properties  []ListingSearchResult `json:"properties"`
	Preferences Preferences           `json:"preferences"`
	Suggestions []string              `json:"suggestions"`
}

// ListingsResponse represents the GET /api/properties reply
type ListingsResponse struct {
	Properties []Listing `json:"properties"`
	Total      int       `json:"total"`
}

// ListingResponse represents the GET /api/property/:id reply
type ListingResponse struct {
	Property Listing `json:"property"`
}
