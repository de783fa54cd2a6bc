package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ExtractorHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.ExtractorModel)
	assert.Equal(t, 0.5, cfg.MinConfidence)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_AppliesOptions(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://remote:8080/v1"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithExtractorModel("gpt-4o-mini"),
		WithMinConfidence(0.7),
	)
	assert.Equal(t, "http://remote:8080/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://remote:8080/v1", cfg.ExtractorHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", cfg.ExtractorModel)
	assert.Equal(t, 0.7, cfg.MinConfidence)
}

func TestNewConfig_SplitHosts(t *testing.T) {
	cfg := NewConfig(
		WithEmbeddingHost("http://embed:1111/v1"),
		WithExtractorHost("http://extract:2222/v1"),
	)
	assert.Equal(t, "http://embed:1111/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://extract:2222/v1", cfg.ExtractorHost)
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"appends v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash first", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already normalized", "http://localhost:11434/v1", "http://localhost:11434/v1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tc.host))
			cfg.Normalize()
			assert.Equal(t, tc.want, cfg.EmbeddingHost)
			assert.Equal(t, tc.want, cfg.ExtractorHost)
		})
	}

	t.Run("empty hosts are left alone", func(t *testing.T) {
		cfg := &Config{}
		cfg.Normalize()
		assert.Empty(t, cfg.EmbeddingHost)
		assert.Empty(t, cfg.ExtractorHost)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("normalizes before validating", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("missing fields", func(t *testing.T) {
		assert.Error(t, (&Config{}).Validate())

		cfg := DefaultConfig()
		cfg.EmbeddingModel = ""
		assert.Error(t, cfg.Validate())

		cfg = DefaultConfig()
		cfg.ExtractorModel = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("confidence bounds", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinConfidence = -0.1
		assert.Error(t, cfg.Validate())

		cfg.MinConfidence = 1.1
		assert.Error(t, cfg.Validate())

		cfg.MinConfidence = 1.0
		assert.NoError(t, cfg.Validate())
	})
}
