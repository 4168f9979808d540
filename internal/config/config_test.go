package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GLEE_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "GleeWorld Course API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "openai", cfg.AIProvider)
	require.Equal(t, "gpt-4o-mini", cfg.AIModel)
	require.Equal(t, 250, cfg.MinWords)
	require.Equal(t, 300, cfg.MaxWords)
	require.Equal(t, 90*time.Second, cfg.GradingTimeout)
	require.Equal(t, 2*time.Minute, cfg.GuardTTL)
	require.Equal(t, 5*time.Minute, cfg.GradeCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GLEE_JWT_SECRET", "test-secret")
	t.Setenv("GLEE_APP_PORT", ":9090")
	t.Setenv("GLEE_JOURNAL_MIN_WORDS", "200")
	t.Setenv("GLEE_JOURNAL_MAX_WORDS", "400")
	t.Setenv("GLEE_AI_MODEL", "gpt-4o")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 200, cfg.MinWords)
	require.Equal(t, 400, cfg.MaxWords)
	require.Equal(t, "gpt-4o", cfg.AIModel)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("GLEE_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvertedWordBounds(t *testing.T) {
	t.Setenv("GLEE_JWT_SECRET", "test-secret")
	t.Setenv("GLEE_JOURNAL_MIN_WORDS", "400")
	t.Setenv("GLEE_JOURNAL_MAX_WORDS", "300")

	_, err := Load()
	require.Error(t, err)
}
