package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "AI_PROVIDER", "AI_MODEL", "ARK_MODEL", "Model", "GENERATIVE_AI_KEY",
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "AI_MAX_CONVERSATION_LENGTH",
		"AI_SERIALIZE_EXCHANGES", "DATA_DIR", "UPLOADS_DIR", "STORAGE_BUCKET_DIR",
		"PUBLIC_BASE_URL", "STORAGE_SIGNED_URL_TTL", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW",
		"CURRENCY_API_KEY", "CURRENCY_API_URL", "CURRENCY_DEFAULTS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-1.5-flash-latest", cfg.AI.Model)
	assert.Equal(t, 5, cfg.AI.MaxConversationLength)
	assert.False(t, cfg.AI.SerializeExchanges)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, "./budgetly.db", cfg.Storage.DatabasePath())
	assert.Equal(t, "./uploads", cfg.Storage.UploadsDir)
	assert.Equal(t, "http://localhost:3000", cfg.Storage.PublicBaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Storage.SignedURLTTL)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "EUR,USD,CAD,IDR", cfg.Currency.DefaultCurrencies)
}

func TestLoadGeminiEnabledWithKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENERATIVE_AI_KEY", "secret")
	t.Setenv("AI_MAX_CONVERSATION_LENGTH", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, 1, cfg.AI.MaxConversationLength)
}

func TestLoadArkProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "ark")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "ep-123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderArk, cfg.AI.Provider)
	assert.Equal(t, "ep-123", cfg.AI.Model)
	assert.True(t, cfg.AI.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"AI_PROVIDER":            "openai",
		"AI_SERIALIZE_EXCHANGES": "sometimes",
		"RATE_LIMIT_WINDOW":      "fifteen",
		"PORT":                   "30 00",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPublicBaseURLOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("PUBLIC_BASE_URL", "https://api.budgetly.app/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.budgetly.app", cfg.Storage.PublicBaseURL)
}
