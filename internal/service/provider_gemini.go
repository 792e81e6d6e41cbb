package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"mira/internal/config"
	"mira/internal/model"
)

var (
	metaLinePattern   = regexp.MustCompile(`(?im)^(?:refining|thinking|note|meta|internal|reasoning|analysis|commentary|persona|character)\b.*$`)
	metaParenPattern  = regexp.MustCompile(`(?i)\((?:refining|thinking|note|internal|reasoning)[^)]*\)`)
	metaBulletPattern = regexp.MustCompile(`(?im)^\*\s*(?:refining|thinking|note|meta)\b.*$`)
	extraBlankLines   = regexp.MustCompile(`\n{3,}`)
)

// GeminiProvider talks to Google Gemini through langchaingo
type GeminiProvider struct {
	llm llms.Model
}

// NewGeminiProvider creates a provider for cfg. Without an API key the
// provider is returned unavailable rather than failing.
func NewGeminiProvider(ctx context.Context, cfg *config.GeminiConfig) (*GeminiProvider, error) {
	if !cfg.Enabled {
		return &GeminiProvider{}, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{llm: llm}, nil
}

// NewGeminiProviderWithModel wraps an existing llms.Model
func NewGeminiProviderWithModel(llm llms.Model) *GeminiProvider {
	return &GeminiProvider{llm: llm}
}

// Name implements Provider
func (p *GeminiProvider) Name() string { return string(ProviderGemini) }

// Available implements Provider
func (p *GeminiProvider) Available() bool { return p.llm != nil }

// Extract implements Provider
func (p *GeminiProvider) Extract(ctx context.Context, req ExtractRequest) (*model.Preferences, error) {
	if p.llm == nil {
		return nil, fmt.Errorf("%w: gemini API key missing", ErrProviderUnavailable)
	}

	prompt := extractionPrompt(req.MidConversation) + transcript(req.History) +
		"\nUser message: " + req.Message +
		"\n\nCRITICAL: Return ONLY valid JSON with no other text, commentary, or explanations."

	text, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt, llms.WithTemperature(0.3))
	if err != nil {
		return nil, fmt.Errorf("gemini extract: %w", err)
	}
	return decodeProviderPreferences(text)
}

// Generate implements Provider
func (p *GeminiProvider) Generate(ctx context.Context, req ResponseRequest) (string, error) {
	if p.llm == nil {
		return "", fmt.Errorf("%w: gemini API key missing", ErrProviderUnavailable)
	}

	prompt := responsePrompt(req.Preferences, req.MatchCount, req.MidConversation) + transcript(req.History) +
		"\nUser message: " + req.Message +
		"\n\nIMPORTANT: Output ONLY the final response to the user. Do not include your reasoning, notes or meta-commentary.\n\nGenerate a response:"

	text, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt,
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(500),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text = stripMetaCommentary(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", ErrMalformedOutput)
	}
	return text, nil
}

// stripMetaCommentary removes reasoning chatter some models prepend to replies
func stripMetaCommentary(text string) string {
	text = metaLinePattern.ReplaceAllString(text, "")
	text = metaParenPattern.ReplaceAllString(text, "")
	text = metaBulletPattern.ReplaceAllString(text, "")
	text = extraBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
