package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"mira/internal/model"
)

// ListingSource supplies the full catalog for one request
type ListingSource interface {
	ListAll(ctx context.Context) ([]model.Listing, error)
}

// ChatResult is everything one turn of the pipeline produces
type ChatResult struct {
	ResponseText string
	Listings     []model.ListingSearchResult
	Preferences  *model.Preferences
	Suggestions  []string
}

// ChatService runs the extract, filter, rank and compose pipeline
type ChatService struct {
	extractor       *Extractor
	provider        Provider // nil when lexical-only
	filter          *CatalogFilter
	ranker          *Ranker
	catalog         ListingSource
	generateTimeout time.Duration
	window          int
}

// ChatServiceOptions collects the pipeline's collaborators
type ChatServiceOptions struct {
	Provider        Provider
	Catalog         ListingSource
	Filter          *CatalogFilter
	Ranker          *Ranker
	ExtractTimeout  time.Duration
	GenerateTimeout time.Duration
	HistoryWindow   int
}

// NewChatService creates a chat service. Missing filter or ranker fall back to defaults.
func NewChatService(opts ChatServiceOptions) *ChatService {
	filter := opts.Filter
	if filter == nil {
		filter = NewCatalogFilter(DefaultAmenityMatchThreshold)
	}
	ranker := opts.Ranker
	if ranker == nil {
		ranker = NewRanker(DefaultRankWeights())
	}
	window := opts.HistoryWindow
	if window < 0 {
		window = DefaultHistoryWindow
	}
	return &ChatService{
		extractor:       NewExtractor(opts.Provider, opts.ExtractTimeout, window),
		provider:        opts.Provider,
		filter:          filter,
		ranker:          ranker,
		catalog:         opts.Catalog,
		generateTimeout: opts.GenerateTimeout,
		window:          window,
	}
}

// Extract exposes the extraction stage alone
func (s *ChatService) Extract(ctx context.Context, message string, history []model.ConversationTurn) (*model.Preferences, string) {
	return s.extractor.Extract(ctx, message, history)
}

// Process handles one user message. Provider failures never surface; the
// worst case is a templated reply.
func (s *ChatService) Process(ctx context.Context, message string, history []model.ConversationTurn) ChatResult {
	start := time.Now()
	mid := HasPriorUserTurn(history)

	prefs, source := s.extractor.Extract(ctx, message, history)
	defer func() {
		pipelineLatency.WithLabelValues(string(prefs.Intent)).Observe(time.Since(start).Seconds())
	}()

	if prefs.Intent == model.IntentGreeting {
		return s.greet(ctx, message, prefs, history, mid)
	}

	listings, err := s.catalog.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load catalog")
	}

	filtered := s.filter.Filter(listings, prefs)
	matchedListings.Observe(float64(len(filtered)))
	ranked := s.ranker.RankResults(filtered, prefs)
	if len(ranked) > MaxListings {
		ranked = ranked[:MaxListings]
	}

	reply := s.generate(ctx, ResponseRequest{
		Message:         message,
		Preferences:     prefs,
		MatchCount:      len(filtered),
		History:         lastTurns(history, s.window),
		MidConversation: mid,
	})
	if reply == "" {
		reply = FallbackResponse(prefs, len(filtered))
	}

	log.Info().
		Str("provider", source).
		Str("intent", string(prefs.Intent)).
		Int("catalog", len(listings)).
		Int("matched", len(filtered)).
		Dur("elapsed", time.Since(start)).
		Msg("chat processed")

	return ChatResult{
		ResponseText: reply,
		Listings:     ranked,
		Preferences:  prefs,
		Suggestions:  Suggestions(prefs, len(filtered)),
	}
}

func (s *ChatService) greet(ctx context.Context, message string, prefs *model.Preferences, history []model.ConversationTurn, mid bool) ChatResult {
	result := ChatResult{
		ResponseText: ClarifyMessage,
		Listings:     []model.ListingSearchResult{},
		Preferences:  prefs,
		Suggestions:  append([]string(nil), GreetingSuggestions...),
	}
	if mid {
		return result
	}

	reply := s.generate(ctx, ResponseRequest{
		Message:     message,
		Preferences: prefs,
		History:     lastTurns(history, s.window),
	})
	if reply == "" {
		reply = GreetingMessage
	}
	result.ResponseText = reply
	return result
}

// generate asks the hosted provider for a reply. An empty string means the
// caller should use its templated text.
func (s *ChatService) generate(ctx context.Context, req ResponseRequest) string {
	if s.provider == nil || !s.provider.Available() {
		return ""
	}
	name := s.provider.Name()

	reply, err := callWithTimeout(ctx, s.generateTimeout, func(ctx context.Context) (string, error) {
		return s.provider.Generate(ctx, req)
	})
	if err != nil {
		kind := failureKind(err)
		generationTotal.WithLabelValues(name, kind).Inc()
		log.Warn().Err(err).Str("provider", name).Str("failure", kind).Msg("reply generation failed, using template")
		return ""
	}

	if req.MidConversation {
		stripped, ok := StripSelfIntroduction(reply)
		if !ok {
			generationTotal.WithLabelValues(name, "stripped").Inc()
			return ""
		}
		reply = stripped
	}
	generationTotal.WithLabelValues(name, "ok").Inc()
	return reply
}
