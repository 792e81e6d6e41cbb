package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mira/internal/model"
)

const scenarioMessage = "2 bed under $500K in Miami with pool"

func scenarioPreferences() *model.Preferences {
	return &model.Preferences{
		Bedrooms:  intPtr(2),
		Budget:    floatPtr(500000),
		Location:  strPtr("miami"),
		Amenities: []string{"pool"},
		Intent:    model.IntentSearch,
	}
}

func TestExtractor_LexicalOnly(t *testing.T) {
	extractor := NewExtractor(nil, time.Second, DefaultHistoryWindow)

	prefs, source := extractor.Extract(context.Background(), scenarioMessage, nil)
	assert.Equal(t, string(ProviderLexical), source)
	assert.Equal(t, scenarioPreferences(), prefs)
}

func TestExtractor_FallsBackToLexical(t *testing.T) {
	lexicalOnly, _ := NewExtractor(nil, time.Second, DefaultHistoryWindow).
		Extract(context.Background(), scenarioMessage, nil)

	tests := []struct {
		name       string
		provider   *fakeProvider
		wantCalled bool
	}{
		{
			name:       "unavailable",
			provider:   &fakeProvider{unavailable: true, prefs: &model.Preferences{Location: strPtr("Paris")}},
			wantCalled: false,
		},
		{
			name:       "slower than the timeout",
			provider:   &fakeProvider{delay: 2 * time.Second, prefs: &model.Preferences{Location: strPtr("Paris")}},
			wantCalled: true,
		},
		{
			name:       "provider error",
			provider:   &fakeProvider{err: errors.New("boom")},
			wantCalled: true,
		},
		{
			name:       "malformed output",
			provider:   &fakeProvider{err: ErrMalformedOutput},
			wantCalled: true,
		},
		{
			name:       "nothing returned",
			provider:   &fakeProvider{},
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewExtractor(tt.provider, 20*time.Millisecond, DefaultHistoryWindow)

			start := time.Now()
			prefs, source := extractor.Extract(context.Background(), scenarioMessage, nil)

			assert.Less(t, time.Since(start), time.Second)
			assert.Equal(t, string(ProviderLexical), source)
			assert.Equal(t, lexicalOnly, prefs)
			assert.Equal(t, tt.wantCalled, tt.provider.extractCalls.Load() > 0)
		})
	}
}

func TestExtractor_HostedResultIsNormalised(t *testing.T) {
	provider := &fakeProvider{
		name: "openai",
		prefs: &model.Preferences{
			Location:  strPtr(" Austin "),
			Amenities: []string{"Garden", "garden"},
			Intent:    model.IntentGreeting,
		},
	}
	extractor := NewExtractor(provider, time.Second, DefaultHistoryWindow)

	prefs, source := extractor.Extract(context.Background(), "something green in austin", nil)
	require.NotNil(t, prefs)
	assert.Equal(t, "openai", source)
	assert.Equal(t, &model.Preferences{
		Location:  strPtr("Austin"),
		Amenities: []string{"garden"},
		Intent:    model.IntentSearch,
	}, prefs)
}

func TestExtractor_GreetingPolicy(t *testing.T) {
	history := []model.ConversationTurn{
		{Role: model.RoleUser, Content: "3 bed in Boston"},
		{Role: model.RoleAssistant, Content: "Here are some options."},
	}

	tests := []struct {
		name     string
		provider Provider
		message  string
		history  []model.ConversationTurn
		want     model.Intent
	}{
		{
			name:    "first message greeting",
			message: "hi",
			want:    model.IntentGreeting,
		},
		{
			name:     "hosted search without fields becomes greeting",
			provider: &fakeProvider{prefs: &model.Preferences{Intent: model.IntentSearch}},
			message:  "hi",
			history:  history,
			want:     model.IntentGreeting,
		},
		{
			name:     "hosted greeting with criteria mid conversation is a search",
			provider: &fakeProvider{prefs: &model.Preferences{MaxBudget: floatPtr(300000), Intent: model.IntentGreeting}},
			message:  "what about cheaper",
			history:  history,
			want:     model.IntentSearch,
		},
		{
			name:    "lexical small talk mid conversation has no criteria",
			message: "ok",
			history: history,
			want:    model.IntentGreeting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewExtractor(tt.provider, time.Second, DefaultHistoryWindow)
			prefs, _ := extractor.Extract(context.Background(), tt.message, tt.history)
			assert.Equal(t, tt.want, prefs.Intent)
		})
	}
}

func TestCallWithTimeout(t *testing.T) {
	v, err := callWithTimeout(context.Background(), time.Second, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = callWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, ErrProviderTimeout)

	_, err = callWithTimeout(context.Background(), 10*time.Millisecond, func(context.Context) (int, error) {
		time.Sleep(200 * time.Millisecond)
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrProviderTimeout)
}

func TestFailureKind(t *testing.T) {
	assert.Equal(t, "unavailable", failureKind(ErrProviderUnavailable))
	assert.Equal(t, "timeout", failureKind(ErrProviderTimeout))
	assert.Equal(t, "malformed", failureKind(errors.Join(errors.New("x"), ErrMalformedOutput)))
	assert.Equal(t, "error", failureKind(errors.New("x")))
}

func TestLastTurns(t *testing.T) {
	history := make([]model.ConversationTurn, 8)
	for i := range history {
		history[i] = model.ConversationTurn{Role: model.RoleUser, Content: string(rune('a' + i))}
	}

	got := lastTurns(history, DefaultHistoryWindow)
	require.Len(t, got, 6)
	assert.Equal(t, "c", got[0].Content)
	assert.Len(t, lastTurns(history[:3], 6), 3)
	assert.Nil(t, lastTurns(history, 0))
}

func TestHasPriorUserTurn(t *testing.T) {
	assert.False(t, HasPriorUserTurn(nil))
	assert.False(t, HasPriorUserTurn([]model.ConversationTurn{{Role: model.RoleAssistant, Content: "hello"}}))
	assert.True(t, HasPriorUserTurn([]model.ConversationTurn{{Role: "User", Content: "hi"}}))
}
