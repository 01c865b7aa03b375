// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "framesmith", cfg.Logger().ServiceName)
	assert.Empty(t, cfg.Logger().LogFile)
	assert.Equal(t, "https://api.figma.com", cfg.Figma().BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Figma().Timeout)
	assert.Equal(t, "auto", cfg.Figma().BackgroundDialect)
	assert.Equal(t, ProviderGemini, cfg.LLM().Provider)
	assert.Equal(t, 5*time.Minute, cfg.LLM().APITimeout)
	assert.InDelta(t, 0.2, cfg.LLM().Temperature, 1e-6)
	assert.Equal(t, PromptSourceFile, cfg.Prompt().Source)
	assert.Equal(t, "tailwind.config.ts", cfg.Prompt().ContextFiles["tailwind"])
	assert.Equal(t, "src/app/globals.css", cfg.Prompt().ContextFiles["globalcss"])
	assert.Equal(t, 4, cfg.Convert().Concurrency)
	assert.Equal(t, "-parsed", cfg.Convert().OutputSuffix)
	assert.Empty(t, cfg.Database().URL)

	assert.NoError(t, cfg.Validate(), "defaults must be valid on their own")
	assert.False(t, cfg.Figma().HasCredentials())
}

func TestSetters(t *testing.T) {
	cfg := NewDefaultConfig()
	var iface Interface = cfg

	iface.SetConvertConcurrency(9)
	iface.SetConvertFormat("yaml")
	iface.SetPromptTemplateID("landing-page")
	iface.SetLLMModel("gpt-4.1")

	assert.Equal(t, 9, cfg.Convert().Concurrency)
	assert.Equal(t, "yaml", cfg.Convert().Format)
	assert.Equal(t, "landing-page", cfg.Prompt().TemplateID)
	assert.Equal(t, "gpt-4.1", cfg.LLM().Model)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Core Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		require.NoError(t, cfg.Validate())

		invalidConcurrency := *cfg
		invalidConcurrency.ConvertCfg.Concurrency = 0
		err := invalidConcurrency.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "convert.concurrency must be a positive integer")

		invalidFormat := *cfg
		invalidFormat.ConvertCfg.Format = "xml"
		err = invalidFormat.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "convert.format")
	})

	t.Run("Figma Validation", func(t *testing.T) {
		valid := NewDefaultConfig().FigmaCfg
		assert.NoError(t, valid.Validate())

		noURL := valid
		noURL.BaseURL = ""
		assert.ErrorContains(t, noURL.Validate(), "base_url is required")

		zeroRate := valid
		zeroRate.RateLimit = 0
		assert.ErrorContains(t, zeroRate.Validate(), "rate_limit must be greater than 0")

		zeroBurst := valid
		zeroBurst.Burst = 0
		assert.ErrorContains(t, zeroBurst.Validate(), "burst must be a positive integer")

		badDialect := valid
		badDialect.BackgroundDialect = "fills"
		assert.ErrorContains(t, badDialect.Validate(), "background_dialect")

		emptyDialect := valid
		emptyDialect.BackgroundDialect = ""
		assert.NoError(t, emptyDialect.Validate(), "an empty dialect means auto")
	})

	t.Run("LLM Validation", func(t *testing.T) {
		valid := NewDefaultConfig().LLMCfg
		assert.NoError(t, valid.Validate())

		openai := valid
		openai.Provider = ProviderOpenAI
		assert.NoError(t, openai.Validate())

		unknown := valid
		unknown.Provider = "anthropic"
		assert.ErrorContains(t, unknown.Validate(), "unsupported provider")

		noModel := valid
		noModel.Model = "  "
		assert.ErrorContains(t, noModel.Validate(), "model is required")

		hot := valid
		hot.Temperature = 2.5
		assert.ErrorContains(t, hot.Validate(), "temperature must be between 0.0 and 2.0")

		badTopP := valid
		badTopP.TopP = 1.5
		assert.ErrorContains(t, badTopP.Validate(), "top_p")

		negative := valid
		negative.MaxTokens = -1
		assert.ErrorContains(t, negative.Validate(), "must not be negative")
	})

	t.Run("Prompt Validation", func(t *testing.T) {
		valid := NewDefaultConfig().PromptCfg
		assert.NoError(t, valid.Validate())

		registry := valid
		registry.Source = PromptSourceRegistry
		assert.ErrorContains(t, registry.Validate(), "registry_url is required")
		registry.RegistryURL = "https://prompts.internal"
		assert.NoError(t, registry.Validate())

		unknown := valid
		unknown.Source = "s3"
		assert.ErrorContains(t, unknown.Validate(), "unsupported source")

		noTemplate := valid
		noTemplate.TemplateID = ""
		assert.ErrorContains(t, noTemplate.Validate(), "template_id is required")

		badFormat := valid
		badFormat.FrameFormat = "toml"
		assert.ErrorContains(t, badFormat.Validate(), "frame_format")
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
figma:
  rate_limit: 0.5
  background_dialect: backgrounds
llm:
  provider: openai
  model: gpt-4.1
convert:
  concurrency: 8
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, 0.5, cfg.Figma().RateLimit)
		assert.Equal(t, "backgrounds", cfg.Figma().BackgroundDialect)
		assert.Equal(t, ProviderOpenAI, cfg.LLM().Provider)
		assert.Equal(t, "gpt-4.1", cfg.LLM().Model)
		assert.Equal(t, 8, cfg.Convert().Concurrency)
		// Untouched sections keep their defaults.
		assert.Equal(t, "info", cfg.Logger().Level)
		assert.Equal(t, 4, cfg.Figma().Burst)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("convert.concurrency", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "convert.concurrency must be a positive integer")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		yamlConfig := []byte(`
database:
  url: "postgres://configfile/db"
`)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))

		t.Setenv("FRAMESMITH_FIGMA_ACCESS_TOKEN", "figd_env_token")
		t.Setenv("FRAMESMITH_LLM_API_KEY", "llm-key-123")
		t.Setenv("FRAMESMITH_PROMPT_REGISTRY_TOKEN", "registry-secret")
		t.Setenv("FRAMESMITH_DATABASE_URL", "postgres://envvar/db")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "figd_env_token", cfg.Figma().AccessToken)
		assert.True(t, cfg.Figma().HasCredentials())
		assert.Equal(t, "llm-key-123", cfg.LLM().APIKey)
		assert.Equal(t, "registry-secret", cfg.Prompt().RegistryToken)
		// The environment overrides the config file.
		assert.Equal(t, "postgres://envvar/db", cfg.Database().URL)
	})

	t.Run("Conventional Variable Names", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		t.Setenv("FIGMA_OAUTH_TOKEN", "oauth-abc")
		t.Setenv("GEMINI_API_KEY", "gemini-key")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "oauth-abc", cfg.Figma().OAuthToken)
		assert.Equal(t, "gemini-key", cfg.LLM().APIKey)
	})
}

// -- Struct and Mapping Tests --

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/framesmith.log
figma:
  timeout: 5s
prompt:
  context_files:
    tailwind: web/tailwind.config.js
    tokens: design/tokens.json
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, "/var/log/framesmith.log", cfg.Logger().LogFile)
	assert.Equal(t, 5*time.Second, cfg.Figma().Timeout)
	require.NotNil(t, cfg.Prompt().ContextFiles)
	assert.Equal(t, "web/tailwind.config.js", cfg.Prompt().ContextFiles["tailwind"])
	assert.Equal(t, "design/tokens.json", cfg.Prompt().ContextFiles["tokens"])
}
