package service

import (
	"context"
	"fmt"
	"strings"

	"mira/internal/config"
	"mira/internal/model"
)

// OpenAIProvider extracts preferences and writes replies through a chat completion API
type OpenAIProvider struct {
	client *OpenAIClient
	cfg    *config.OpenAIConfig
}

// NewOpenAIProvider creates a provider backed by client
func NewOpenAIProvider(client *OpenAIClient, cfg *config.OpenAIConfig) *OpenAIProvider {
	return &OpenAIProvider{client: client, cfg: cfg}
}

// Name implements Provider
func (p *OpenAIProvider) Name() string { return string(ProviderOpenAI) }

// Available implements Provider
func (p *OpenAIProvider) Available() bool { return p.client.IsEnabled() }

// Extract implements Provider
func (p *OpenAIProvider) Extract(ctx context.Context, req ExtractRequest) (*model.Preferences, error) {
	resp, err := p.client.ChatCompletion(ctx, ChatCompletionRequest{
		Messages:       conversation(extractionPrompt(req.MidConversation), req.History, req.Message),
		Temperature:    p.cfg.ExtractTemperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrMalformedOutput)
	}

	return decodeProviderPreferences(resp.Choices[0].Message.Content)
}

// Generate implements Provider
func (p *OpenAIProvider) Generate(ctx context.Context, req ResponseRequest) (string, error) {
	resp, err := p.client.ChatCompletion(ctx, ChatCompletionRequest{
		Messages:    conversation(responsePrompt(req.Preferences, req.MatchCount, req.MidConversation), req.History, req.Message),
		Temperature: p.cfg.ResponseTemperature,
		MaxTokens:   p.cfg.ResponseMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformedOutput)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", ErrMalformedOutput)
	}
	return text, nil
}

// conversation builds system + history + user messages
func conversation(system string, history []model.ConversationTurn, message string) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: system})
	for _, turn := range history {
		role := model.RoleAssistant
		if strings.EqualFold(turn.Role, model.RoleUser) {
			role = model.RoleUser
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Content})
	}
	return append(messages, ChatMessage{Role: model.RoleUser, Content: message})
}
