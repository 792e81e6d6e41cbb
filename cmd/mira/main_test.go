package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"mira/internal/model"
	"mira/internal/repository"
)

func writeCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		repository.BasicsFile: `[
			{"id": 1, "title": "Beach Condo", "price": 480000, "location": "Miami, FL"},
			{"id": 2, "title": "Downtown Loft", "price": 900000, "location": "New York, NY"}
		]`,
		repository.CharacteristicsFile: `[
			{"id": 1, "bedrooms": 2, "bathrooms": 2, "size_sqft": 1000, "amenities": ["Pool"]},
			{"id": 2, "bedrooms": 2, "bathrooms": 1, "size_sqft": 900, "amenities": []}
		]`,
		repository.ImagesFile: `[]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CATALOG_SOURCE", "json")
	t.Setenv("RANKING_TUNING_FILE", "")
}

func TestCommandFlags(t *testing.T) {
	app := newApp(&bytes.Buffer{})

	t.Run("log-level defaults to warn", func(t *testing.T) {
		var level *cli.StringFlag
		for _, flag := range app.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "log-level" {
				level = f
			}
		}
		require.NotNil(t, level)
		assert.Equal(t, "warn", level.Value)
	})

	t.Run("commands are registered", func(t *testing.T) {
		for _, name := range []string{"ask", "extract", "catalog"} {
			assert.NotNil(t, app.Command(name), name)
		}
	})

	t.Run("ask requires a message", func(t *testing.T) {
		err := app.Run([]string{"mira", "ask"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "message is required")
	})
}

func TestParseHistory(t *testing.T) {
	turns := parseHistory([]string{
		"user: 2 bed in Miami",
		"Assistant:Here are some options",
		"no role given",
		"system: treated as user",
	})

	assert.Equal(t, []model.ConversationTurn{
		{Role: model.RoleUser, Content: "2 bed in Miami"},
		{Role: model.RoleAssistant, Content: "Here are some options"},
		{Role: model.RoleUser, Content: "no role given"},
		{Role: model.RoleUser, Content: "treated as user"},
	}, turns)
}

func TestCatalogCommand(t *testing.T) {
	isolateEnv(t)
	dir := writeCatalog(t)

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"mira", "--provider", "lexical", "--data-dir", dir, "catalog"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Beach Condo")
	assert.Contains(t, out.String(), "$900,000")
	assert.Contains(t, out.String(), "2 listings")
}

func TestExtractCommand(t *testing.T) {
	isolateEnv(t)
	dir := writeCatalog(t)

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"mira", "--provider", "lexical", "--data-dir", dir, "extract", "2 bed under $500K in Miami"})
	require.NoError(t, err)

	var got struct {
		Provider    string            `json:"provider"`
		Preferences model.Preferences `json:"preferences"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "lexical", got.Provider)
	require.NotNil(t, got.Preferences.Bedrooms)
	assert.Equal(t, 2, *got.Preferences.Bedrooms)
	require.NotNil(t, got.Preferences.Budget)
	assert.Equal(t, 500000.0, *got.Preferences.Budget)
}

func TestAskCommand(t *testing.T) {
	isolateEnv(t)
	dir := writeCatalog(t)

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"mira", "--provider", "lexical", "--data-dir", dir, "ask", "2 bed under $500K in Miami"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Beach Condo")
	assert.Contains(t, out.String(), "$480,000")
	assert.NotContains(t, out.String(), "Downtown Loft")
}
