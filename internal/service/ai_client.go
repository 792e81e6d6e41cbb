package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mira/internal/model"
)

// Extraction failure kinds. Any other provider error is a generic failure.
var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderTimeout     = errors.New("provider timeout")
	ErrMalformedOutput     = errors.New("malformed provider output")
)

// ProviderKind names one of the supported extraction backends
type ProviderKind string

const (
	ProviderOpenAI  ProviderKind = "openai"
	ProviderGemini  ProviderKind = "gemini"
	ProviderLexical ProviderKind = "lexical"
)

// ParseProviderKind resolves the configured selector. Unknown or empty values mean lexical.
func ParseProviderKind(s string) ProviderKind {
	switch ProviderKind(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderOpenAI:
		return ProviderOpenAI
	case ProviderGemini:
		return ProviderGemini
	default:
		return ProviderLexical
	}
}

// ExtractRequest is the input to a hosted extraction call
type ExtractRequest struct {
	Message         string
	History         []model.ConversationTurn // already windowed
	MidConversation bool
}

// ResponseRequest is the input to a hosted reply generation call
type ResponseRequest struct {
	Message         string
	Preferences     *model.Preferences
	MatchCount      int
	History         []model.ConversationTurn // already windowed
	MidConversation bool
}

// Provider is a hosted text-understanding backend
type Provider interface {
	Name() string

	// Available reports whether the backend has the credentials it needs
	Available() bool

	// Extract turns a message into raw, not yet normalised preferences
	Extract(ctx context.Context, req ExtractRequest) (*model.Preferences, error)

	// Generate writes the user-facing reply
	Generate(ctx context.Context, req ResponseRequest) (string, error)
}

// callWithTimeout races fn against d. fn keeps running in the background if it
// ignores its context, but the caller is released as soon as d elapses.
func callWithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return r.value, fmt.Errorf("%w: %v", ErrProviderTimeout, r.err)
		}
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w after %s", ErrProviderTimeout, d)
	}
}

// failureKind labels an extraction error for logs and metrics
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		return "unavailable"
	case errors.Is(err, ErrProviderTimeout):
		return "timeout"
	case errors.Is(err, ErrMalformedOutput):
		return "malformed"
	default:
		return "error"
	}
}

// lastTurns returns at most n trailing turns
func lastTurns(history []model.ConversationTurn, n int) []model.ConversationTurn {
	if n <= 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// HasPriorUserTurn reports whether the conversation already contains a user message
func HasPriorUserTurn(history []model.ConversationTurn) bool {
	for _, turn := range history {
		if strings.EqualFold(turn.Role, model.RoleUser) {
			return true
		}
	}
	return false
}
