// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/framesmith/internal/scenegraph"
	"github.com/xkilldash9x/framesmith/internal/styletree"
)

// EnvPrefix is prepended to every environment variable viper consults.
const EnvPrefix = "FRAMESMITH"

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Figma() FigmaConfig
	LLM() LLMConfig
	Prompt() PromptConfig
	Database() DatabaseConfig
	Convert() ConvertConfig

	// Flag overrides
	SetConvertConcurrency(int)
	SetConvertFormat(string)
	SetPromptTemplateID(string)
	SetLLMModel(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	FigmaCfg    FigmaConfig    `mapstructure:"figma" yaml:"figma"`
	LLMCfg      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	PromptCfg   PromptConfig   `mapstructure:"prompt" yaml:"prompt"`
	DatabaseCfg DatabaseConfig `mapstructure:"database" yaml:"database"`
	ConvertCfg  ConvertConfig  `mapstructure:"convert" yaml:"convert"`
}

// --- Getters ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Figma() FigmaConfig       { return c.FigmaCfg }
func (c *Config) LLM() LLMConfig           { return c.LLMCfg }
func (c *Config) Prompt() PromptConfig     { return c.PromptCfg }
func (c *Config) Database() DatabaseConfig { return c.DatabaseCfg }
func (c *Config) Convert() ConvertConfig   { return c.ConvertCfg }

// --- Setters ---

func (c *Config) SetConvertConcurrency(n int)   { c.ConvertCfg.Concurrency = n }
func (c *Config) SetConvertFormat(f string)     { c.ConvertCfg.Format = f }
func (c *Config) SetPromptTemplateID(id string) { c.PromptCfg.TemplateID = id }
func (c *Config) SetLLMModel(m string)          { c.LLMCfg.Model = m }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the terminal color of each level in console output.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// FigmaConfig configures access to the design API. Exactly one of the two
// credentials is normally set; a personal access token wins when both are.
type FigmaConfig struct {
	AccessToken       string        `mapstructure:"access_token" yaml:"-"`
	OAuthToken        string        `mapstructure:"oauth_token" yaml:"-"`
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit         float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
	BackgroundDialect string        `mapstructure:"background_dialect" yaml:"background_dialect"`
}

// HasCredentials reports whether any API credential is configured.
func (f FigmaConfig) HasCredentials() bool {
	return f.AccessToken != "" || f.OAuthToken != ""
}

// LLMProvider defines the supported LLM providers.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
)

// LLMConfig defines the model used for code generation.
type LLMConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	TopP        float32       `mapstructure:"top_p" yaml:"top_p"`
	TopK        int           `mapstructure:"top_k" yaml:"top_k"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// Prompt template sources.
const (
	PromptSourceFile     = "file"
	PromptSourceRegistry = "registry"
)

// PromptConfig locates the code-generation template and the project files
// injected into it. ContextFiles maps a template variable to a file path.
type PromptConfig struct {
	Source        string            `mapstructure:"source" yaml:"source"`
	Dir           string            `mapstructure:"dir" yaml:"dir"`
	RegistryURL   string            `mapstructure:"registry_url" yaml:"registry_url"`
	RegistryToken string            `mapstructure:"registry_token" yaml:"-"`
	TemplateID    string            `mapstructure:"template_id" yaml:"template_id"`
	FrameFormat   string            `mapstructure:"frame_format" yaml:"frame_format"`
	ContextFiles  map[string]string `mapstructure:"context_files" yaml:"context_files"`
}

// DatabaseConfig points at the telemetry database. An empty URL disables it.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ConvertConfig controls offline conversion of saved documents.
type ConvertConfig struct {
	Concurrency  int    `mapstructure:"concurrency" yaml:"concurrency"`
	Format       string `mapstructure:"format" yaml:"format"`
	OutputSuffix string `mapstructure:"output_suffix" yaml:"output_suffix"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "framesmith")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Figma --
	v.SetDefault("figma.base_url", "https://api.figma.com")
	v.SetDefault("figma.timeout", "30s")
	v.SetDefault("figma.rate_limit", 2.0)
	v.SetDefault("figma.burst", 4)
	v.SetDefault("figma.background_dialect", string(scenegraph.DialectAuto))

	// -- LLM --
	v.SetDefault("llm.provider", string(ProviderGemini))
	v.SetDefault("llm.model", "gemini-2.5-pro")
	v.SetDefault("llm.api_timeout", "5m")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.top_p", 0.95)
	v.SetDefault("llm.top_k", 0)
	v.SetDefault("llm.max_tokens", 8192)

	// -- Prompt --
	v.SetDefault("prompt.source", PromptSourceFile)
	v.SetDefault("prompt.dir", "~/.framesmith/prompts")
	v.SetDefault("prompt.template_id", "frame-to-component")
	v.SetDefault("prompt.frame_format", string(styletree.FormatJSONIndent))
	v.SetDefault("prompt.context_files", map[string]string{
		"tailwind":  "tailwind.config.ts",
		"globalcss": "src/app/globals.css",
	})

	// -- Convert --
	v.SetDefault("convert.concurrency", 4)
	v.SetDefault("convert.format", string(styletree.FormatJSONIndent))
	v.SetDefault("convert.output_suffix", "-parsed")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Secrets are bound explicitly so the conventional un-prefixed names work too.
	v.BindEnv("figma.access_token", EnvPrefix+"_FIGMA_ACCESS_TOKEN", "FIGMA_ACCESS_TOKEN")
	v.BindEnv("figma.oauth_token", EnvPrefix+"_FIGMA_OAUTH_TOKEN", "FIGMA_OAUTH_TOKEN")
	v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("prompt.registry_token", EnvPrefix+"_PROMPT_REGISTRY_TOKEN")
	v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
// Credentials are not required here; commands that call remote services
// check for them when they build their clients.
func (c *Config) Validate() error {
	if err := c.FigmaCfg.Validate(); err != nil {
		return fmt.Errorf("figma configuration invalid: %w", err)
	}
	if err := c.LLMCfg.Validate(); err != nil {
		return fmt.Errorf("llm configuration invalid: %w", err)
	}
	if err := c.PromptCfg.Validate(); err != nil {
		return fmt.Errorf("prompt configuration invalid: %w", err)
	}
	if c.ConvertCfg.Concurrency <= 0 {
		return fmt.Errorf("convert.concurrency must be a positive integer")
	}
	if _, err := styletree.ParseFormat(c.ConvertCfg.Format); err != nil {
		return fmt.Errorf("convert.format: %w", err)
	}
	return nil
}

// Validate checks the Figma configuration.
func (f *FigmaConfig) Validate() error {
	if f.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive duration")
	}
	if f.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be greater than 0")
	}
	if f.Burst <= 0 {
		return fmt.Errorf("burst must be a positive integer")
	}
	if _, err := scenegraph.ParseDialect(f.BackgroundDialect); err != nil {
		return fmt.Errorf("background_dialect: %w", err)
	}
	return nil
}

// Validate checks the LLM configuration.
func (l *LLMConfig) Validate() error {
	switch l.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported provider %q (want gemini or openai)", l.Provider)
	}
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if l.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be a positive duration")
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0")
	}
	if l.TopP < 0 || l.TopP > 1 {
		return fmt.Errorf("top_p must be between 0.0 and 1.0")
	}
	if l.TopK < 0 || l.MaxTokens < 0 {
		return fmt.Errorf("top_k and max_tokens must not be negative")
	}
	return nil
}

// Validate checks the prompt configuration.
func (p *PromptConfig) Validate() error {
	switch p.Source {
	case PromptSourceFile:
		if p.Dir == "" {
			return fmt.Errorf("dir is required for the file source")
		}
	case PromptSourceRegistry:
		if p.RegistryURL == "" {
			return fmt.Errorf("registry_url is required for the registry source")
		}
	default:
		return fmt.Errorf("unsupported source %q (want file or registry)", p.Source)
	}
	if p.TemplateID == "" {
		return fmt.Errorf("template_id is required")
	}
	if _, err := styletree.ParseFormat(p.FrameFormat); err != nil {
		return fmt.Errorf("frame_format: %w", err)
	}
	return nil
}
