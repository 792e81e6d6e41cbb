package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("AI_EXTRACT_TIMEOUT", "")
	t.Setenv("RATE_LIMIT_REQUESTS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "lexical", cfg.AI.Provider)
	assert.Equal(t, 8*time.Second, cfg.AI.ExtractTimeout)
	assert.Equal(t, 5*time.Second, cfg.AI.GenerateTimeout)
	assert.Equal(t, 6, cfg.AI.HistoryWindow)
	assert.False(t, cfg.OpenAI.Enabled)
	assert.False(t, cfg.Gemini.Enabled)
	assert.Equal(t, 30, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", " Gemini ")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("AI_EXTRACT_TIMEOUT", "2s")
	t.Setenv("AI_GENERATE_TIMEOUT", "not-a-duration")
	t.Setenv("OPENAI_API_BASE", "http://localhost:9999/v1/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.True(t, cfg.Gemini.Enabled)
	assert.Equal(t, 2*time.Second, cfg.AI.ExtractTimeout)
	assert.Equal(t, 5*time.Second, cfg.AI.GenerateTimeout)
	assert.Equal(t, "http://localhost:9999/v1", cfg.OpenAI.APIBase)
}

func TestLoadRejectsBadRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "-1")
	_, err := Load()
	assert.Error(t, err)
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "mira", SSLMode: "disable"}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=mira sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.PostgreSQL.DSN = "postgres://u:p@db/mira"
	assert.Equal(t, "postgres://u:p@db/mira", cfg.GetPostgreSQLDSN())
}
