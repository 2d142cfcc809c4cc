package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults apply without a config file", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:8080", cfg.Server.HTTPAddress())
		assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 120*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.Equal(t, "litsearch", cfg.Metrics.Namespace)

		assert.True(t, cfg.PaperSources.ArXiv.Enabled)
		assert.Equal(t, "https://export.arxiv.org/api", cfg.PaperSources.ArXiv.BaseURL)
		assert.InDelta(t, 0.34, cfg.PaperSources.ArXiv.RateLimit, 1e-9)
		assert.Equal(t, 2*time.Second, cfg.PaperSources.ArXiv.RetryDelay)
		assert.True(t, cfg.PaperSources.OpenAlex.Enabled)
		assert.InDelta(t, 1.0, cfg.PaperSources.OpenAlex.RateLimit, 1e-9)

		assert.Equal(t, 10, cfg.Search.CoreCount)
		assert.Equal(t, 15, cfg.Search.RelatedCount)
		assert.Equal(t, 3, cfg.Search.MinCoreThreshold)
		assert.Equal(t, 2020, cfg.Search.SecondaryFromYear)
		assert.Equal(t, 2018, cfg.Search.BackgroundFromYear)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("LITSEARCH_SERVER_HTTP_PORT", "9090")
		t.Setenv("LITSEARCH_LOGGING_LEVEL", "debug")
		t.Setenv("LITSEARCH_PAPER_SOURCES_OPENALEX_EMAIL", "team@example.org")
		t.Setenv("LITSEARCH_SEARCH_CORE_COUNT", "25")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.HTTPPort)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "team@example.org", cfg.PaperSources.OpenAlex.Email)
		assert.Equal(t, 25, cfg.Search.CoreCount)
	})

	t.Run("invalid environment values fail validation", func(t *testing.T) {
		t.Setenv("LITSEARCH_LOGGING_LEVEL", "loud")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{HTTPPort: 8080},
			Logging: LoggingConfig{Level: "info"},
			PaperSources: PaperSourcesConfig{
				ArXiv: ArXivConfig{Enabled: true, RateLimit: 0.34},
			},
			Search: SearchConfig{CoreCount: 10, RelatedCount: 15, BackgroundCount: 10, MaxParallel: 4},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects out-of-range port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.HTTPPort = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		cfg := valid()
		cfg.Logging.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("requires at least one enabled source", func(t *testing.T) {
		cfg := valid()
		cfg.PaperSources.ArXiv.Enabled = false
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects negative rate limits", func(t *testing.T) {
		cfg := valid()
		cfg.PaperSources.ArXiv.RateLimit = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive core count", func(t *testing.T) {
		cfg := valid()
		cfg.Search.CoreCount = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive parallelism", func(t *testing.T) {
		cfg := valid()
		cfg.Search.MaxParallel = 0
		assert.Error(t, cfg.Validate())
	})
}
