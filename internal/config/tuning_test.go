package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTuning(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadTuning(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		tuning, err := LoadTuning("")
		require.NoError(t, err)
		assert.Nil(t, tuning.BudgetWeight)
		assert.Nil(t, tuning.AmenityMatchThreshold)
	})

	t.Run("partial overrides", func(t *testing.T) {
		tuning, err := LoadTuning(writeTuning(t, "amenity_match_threshold: 0.5\nbudget_weight: 40\n"))
		require.NoError(t, err)
		require.NotNil(t, tuning.AmenityMatchThreshold)
		assert.Equal(t, 0.5, *tuning.AmenityMatchThreshold)
		require.NotNil(t, tuning.BudgetWeight)
		assert.Equal(t, 40.0, *tuning.BudgetWeight)
		assert.Nil(t, tuning.SizeCap)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		_, err := LoadTuning(writeTuning(t, "amenity_match_threshold: 1.5\n"))
		assert.Error(t, err)
	})

	t.Run("zero size divisor", func(t *testing.T) {
		_, err := LoadTuning(writeTuning(t, "size_divisor: 0\n"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
