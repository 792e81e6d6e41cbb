package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mira/internal/config"
	"mira/internal/handler"
	"mira/internal/repository"
	"mira/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		repository.BasicsFile: `[
			{"id": 1, "title": "Modern Condo", "price": 480000, "location": "Miami, FL"},
			{"id": 2, "title": "Family House", "price": 400000, "location": "Miami, FL"}
		]`,
		repository.CharacteristicsFile: `[
			{"id": 1, "bedrooms": 2, "bathrooms": 2, "size_sqft": 1100, "amenities": ["Pool", "Parking"]},
			{"id": 2, "bedrooms": 3, "bathrooms": 2, "size_sqft": 1600, "amenities": ["Garden"]}
		]`,
		repository.ImagesFile: `[]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	return &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,OPTIONS",
			AllowedHeaders: "Content-Type",
		},
		Catalog: config.CatalogConfig{Source: config.CatalogSourceJSON, DataDir: dir},
		AI: config.AIConfig{
			Provider:        "lexical",
			ExtractTimeout:  time.Second,
			GenerateTimeout: time.Second,
			HistoryWindow:   6,
		},
		RateLimit: config.RateLimitConfig{Requests: 30, Window: time.Minute},
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		selector      string
		wantNil       bool
		wantName      string
		wantAvailable bool
	}{
		{selector: "lexical", wantNil: true},
		{selector: "", wantNil: true},
		{selector: "regex", wantNil: true},
		{selector: "something-else", wantNil: true},
		{selector: "openai", wantName: "openai"},
		{selector: "GEMINI", wantName: "gemini"},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			cfg := &config.Config{AI: config.AIConfig{Provider: tt.selector}}
			provider, err := NewProvider(context.Background(), cfg)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, provider)
				return
			}
			require.NotNil(t, provider)
			assert.Equal(t, tt.wantName, provider.Name())
			assert.Equal(t, tt.wantAvailable, provider.Available())
		})
	}
}

func TestNew_UnknownCatalogSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.Source = "s3"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNew_BadTuningFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.TuningFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewRateLimiter_DefaultsToMemory(t *testing.T) {
	limiter := NewRateLimiter(context.Background(), config.RateLimitConfig{Requests: 30, Window: time.Minute})
	assert.IsType(t, &handler.MemoryRateLimiter{}, limiter)
}

func TestRouter_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	router := NewRouter(a, NewRateLimiter(context.Background(), cfg.RateLimit), BuildInfo{Version: "test"})

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"provider":"lexical"`)
		assert.Contains(t, w.Body.String(), `"version":"test"`)
	})

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("chat", func(t *testing.T) {
		body := bytes.NewBufferString(`{"message":"2 bed under $500K in Miami with pool","conversationHistory":[]}`)
		req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Message    string `json:"message"`
			Properties []struct {
				ID    int64  `json:"id"`
				Title string `json:"title"`
			} `json:"properties"`
			Preferences struct {
				Bedrooms int    `json:"bedrooms"`
				Intent   string `json:"intent"`
			} `json:"preferences"`
			Suggestions []string `json:"suggestions"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Properties, 1)
		assert.Equal(t, int64(1), resp.Properties[0].ID)
		assert.Equal(t, 2, resp.Preferences.Bedrooms)
		assert.Equal(t, "search", resp.Preferences.Intent)
		assert.NotEmpty(t, resp.Message)
		assert.LessOrEqual(t, len(resp.Suggestions), service.MaxSuggestions)
	})

	t.Run("property", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/property/2", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Family House"`)
		assert.Contains(t, w.Body.String(), repository.DefaultImageURL)
	})

	t.Run("properties", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/properties", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total":2`)
	})

	t.Run("unknown api route", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"API endpoint not found"}`, w.Body.String())
	})
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Equal(t, []string{"*"}, splitList(""))
}
