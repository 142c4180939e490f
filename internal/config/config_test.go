package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresAuthSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, 2, cfg.MaxActivePerPlatform)
	assert.Equal(t, 5, cfg.SubmissionLimit)
	assert.Equal(t, time.Hour, cfg.SubmissionWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")
	t.Setenv("MAX_ACTIVE_PER_PLATFORM", "3")
	t.Setenv("SUBMISSION_RATE_LIMIT", "10")
	t.Setenv("SUBMISSION_RATE_WINDOW", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxActivePerPlatform)
	assert.Equal(t, 10, cfg.SubmissionLimit)
	assert.Equal(t, 30*time.Minute, cfg.SubmissionWindow)
}

func TestLoadIgnoresInvalidOverrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")
	t.Setenv("SUBMISSION_RATE_LIMIT", "not-a-number")
	t.Setenv("SUBMISSION_RATE_WINDOW", "-5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.SubmissionLimit)
	assert.Equal(t, time.Hour, cfg.SubmissionWindow)
}
