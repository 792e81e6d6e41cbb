package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"mira/internal/model"
)

// DefaultHistoryWindow is how many trailing turns hosted providers see
const DefaultHistoryWindow = 6

// Extractor routes extraction to the configured provider and degrades to the
// lexical tier on any failure. It never fails outward.
type Extractor struct {
	provider Provider // nil when lexical-only
	lexical  *LexicalExtractor
	timeout  time.Duration
	window   int
}

// NewExtractor creates an extractor. A nil provider means lexical-only.
func NewExtractor(provider Provider, timeout time.Duration, window int) *Extractor {
	if window < 0 {
		window = DefaultHistoryWindow
	}
	return &Extractor{
		provider: provider,
		lexical:  NewLexicalExtractor(),
		timeout:  timeout,
		window:   window,
	}
}

// extractionTier is one candidate strategy in the fallback chain
type extractionTier struct {
	name string
	run  func(ctx context.Context) (*model.Preferences, error)
}

// Extract returns normalised preferences for message and the name of the
// tier that produced them.
func (e *Extractor) Extract(ctx context.Context, message string, history []model.ConversationTurn) (*model.Preferences, string) {
	mid := HasPriorUserTurn(history)

	var prefs *model.Preferences
	var source string
	for _, tier := range e.tiers(message, history, mid) {
		p, err := tier.run(ctx)
		if err != nil {
			kind := failureKind(err)
			extractionTotal.WithLabelValues(tier.name, kind).Inc()
			log.Warn().Err(err).Str("provider", tier.name).Str("failure", kind).Msg("extraction tier failed, falling back")
			continue
		}
		extractionTotal.WithLabelValues(tier.name, "ok").Inc()
		prefs, source = p, tier.name
		break
	}

	if mid && prefs.Intent == model.IntentGreeting && !IsExplicitGreeting(message) {
		prefs.Intent = model.IntentSearch
	}

	normalized := NormalizePreferences(prefs)
	log.Debug().
		Str("provider", source).
		Str("intent", string(normalized.Intent)).
		Bool("mid_conversation", mid).
		Msg("preferences extracted")
	return normalized, source
}

func (e *Extractor) tiers(message string, history []model.ConversationTurn, mid bool) []extractionTier {
	var tiers []extractionTier
	if e.provider != nil {
		provider := e.provider
		req := ExtractRequest{
			Message:         message,
			History:         lastTurns(history, e.window),
			MidConversation: mid,
		}
		tiers = append(tiers, extractionTier{
			name: provider.Name(),
			run: func(ctx context.Context) (*model.Preferences, error) {
				if !provider.Available() {
					return nil, ErrProviderUnavailable
				}
				p, err := callWithTimeout(ctx, e.timeout, func(ctx context.Context) (*model.Preferences, error) {
					return provider.Extract(ctx, req)
				})
				if err == nil && p == nil {
					return nil, ErrMalformedOutput
				}
				return p, err
			},
		})
	}
	return append(tiers, extractionTier{
		name: string(ProviderLexical),
		run: func(context.Context) (*model.Preferences, error) {
			return e.lexical.Extract(message, mid), nil
		},
	})
}
