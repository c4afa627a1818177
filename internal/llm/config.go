package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider is "anthropic", "openai", "gemini", "openrouter" or "mock".
	Provider string

	Anthropic  Endpoint
	OpenAI     Endpoint
	Gemini     Endpoint
	OpenRouter Endpoint
	Retry      RetryConfig
	RateLimit  RateLimitConfig

	// Timeout bounds one request including retries.
	Timeout time.Duration
}

// Endpoint is how to reach one vendor. An empty BaseURL uses the vendor's
// public API; OpenAI's can point at Ollama or LM Studio.
type Endpoint struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// RateLimitConfig paces outgoing requests. Zero RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// vendors lists the real providers in discovery order with the variable
// other tools use for their key and the model used when none is set.
var vendors = []struct {
	name, keyVar, model string
}{
	{"openai", "OPENAI_API_KEY", "gpt-4o-mini"},
	{"anthropic", "ANTHROPIC_API_KEY", "claude-haiku"},
	{"gemini", "GEMINI_API_KEY", "gemini-flash"},
	{"openrouter", "OPENROUTER_API_KEY", "google/gemini-2.0-flash-exp"},
}

// Endpoint returns the settings for a vendor name, or nil for "mock" and
// unknown names.
func (c *Config) Endpoint(name string) *Endpoint {
	switch name {
	case "anthropic":
		return &c.Anthropic
	case "openai":
		return &c.OpenAI
	case "gemini":
		return &c.Gemini
	case "openrouter":
		return &c.OpenRouter
	}
	return nil
}

func DefaultConfig() Config {
	cfg := Config{
		Provider: "openai",
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		RateLimit: RateLimitConfig{RequestsPerSecond: 4, Burst: 4},
		Timeout:   30 * time.Second,
	}
	for _, v := range vendors {
		cfg.Endpoint(v.name).Model = v.model
	}
	return cfg
}

// ConfigFromEnv reads VUEQUEST_LLM_PROVIDER and, per vendor,
// VUEQUEST_<VENDOR>_API_KEY, _MODEL and _BASE_URL over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := os.Getenv("VUEQUEST_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	for _, v := range vendors {
		e := cfg.Endpoint(v.name)
		prefix := "VUEQUEST_" + strings.ToUpper(v.name) + "_"
		setFromEnv(&e.APIKey, prefix+"API_KEY")
		setFromEnv(&e.Model, prefix+"MODEL")
		setFromEnv(&e.BaseURL, prefix+"BASE_URL")
	}
	return cfg
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig picks the first vendor whose standard key variable is
// set, in the order OpenAI, Anthropic, Gemini, OpenRouter.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendors {
		if k := os.Getenv(v.keyVar); k != "" {
			cfg := DefaultConfig()
			cfg.Provider = v.name
			cfg.Endpoint(v.name).APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	e := c.Endpoint(c.Provider)
	if e == nil {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if e.APIKey == "" {
		return fmt.Errorf("VUEQUEST_%s_API_KEY is required for the %s provider", strings.ToUpper(c.Provider), c.Provider)
	}
	return nil
}
