package config_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neuromaxer/yourcast/internal/config"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("DB_HOST", "test-host")
	defer os.Unsetenv("DB_HOST")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "test-host", cfg.DBHost)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, config.ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 32, cfg.EmbedBatchSize)
	assert.Equal(t, 200, cfg.MaxSessionPages)
	assert.Equal(t, 8080, cfg.ServerPort)
}

func TestLoadConfig_Toggles(t *testing.T) {
	os.Setenv("ENABLE_API", "false")
	os.Setenv("ENABLE_INGEST_WORKER", "true")
	os.Setenv("INGEST_CONCURRENCY", "10")
	defer os.Unsetenv("ENABLE_API")
	defer os.Unsetenv("ENABLE_INGEST_WORKER")
	defer os.Unsetenv("INGEST_CONCURRENCY")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.False(t, cfg.EnableAPI)
	assert.True(t, cfg.EnableIngestWorker)
	assert.Equal(t, 10, cfg.IngestConcurrency)
}

func TestConfig_Validate(t *testing.T) {
	valid := config.Config{
		DBHost:          "localhost",
		DBUser:          "user",
		DBName:          "db",
		LLMProvider:     config.ProviderOpenAI,
		EmbedBatchSize:  32,
		MaxSessionPages: 200,
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
		errIs   error
	}{
		{
			name:    "valid config",
			mutate:  func(c *config.Config) {},
			wantErr: false,
		},
		{
			name:    "missing DBHost",
			mutate:  func(c *config.Config) { c.DBHost = "" },
			wantErr: true,
			errIs:   config.ErrMissingRequired,
		},
		{
			name:    "missing DBUser",
			mutate:  func(c *config.Config) { c.DBUser = "" },
			wantErr: true,
			errIs:   config.ErrMissingRequired,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *config.Config) { c.LLMProvider = "anthropic" },
			wantErr: true,
		},
		{
			name:    "gemini provider is accepted",
			mutate:  func(c *config.Config) { c.LLMProvider = config.ProviderGemini },
			wantErr: false,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *config.Config) { c.EmbedBatchSize = 0 },
			wantErr: true,
		},
		{
			name:    "zero session pages",
			mutate:  func(c *config.Config) { c.MaxSessionPages = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errIs != nil {
					assert.True(t, errors.Is(err, tt.errIs))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
