package model

import "time"

// Config is the complete befundlink configuration
type Config struct {
	Retrieval    RetrievalConfig    `mapstructure:"retrieval" yaml:"retrieval"`
	Alignment    AlignmentConfig    `mapstructure:"alignment" yaml:"alignment"`
	Cache        CacheConfig        `mapstructure:"cache" yaml:"cache"`
	Concurrency  ConcurrencyConfig  `mapstructure:"concurrency" yaml:"concurrency"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting" yaml:"rate_limiting"`
	Output       OutputConfig       `mapstructure:"output" yaml:"output"`
}

// RetrievalConfig selects and configures the span retrieval backend
type RetrievalConfig struct {
	Provider  string        `mapstructure:"provider" yaml:"provider"` // keyword, openai, ollama
	Model     string        `mapstructure:"model" yaml:"model"`
	APIKey    string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Window    int           `mapstructure:"window" yaml:"window"` // Keyword retriever context, in tokens

	HTTPProxy  string `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy string `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
	NoProxy    string `mapstructure:"no_proxy" yaml:"no_proxy,omitempty"`
}

// AlignmentConfig tunes the temporal alignment
type AlignmentConfig struct {
	// ClampMonths is how far a finding's interval may reach back from its
	// latest date. Must be at least 1.
	ClampMonths int `mapstructure:"clamp_months" yaml:"clamp_months"`
}

// CacheConfig controls the retrieval result cache
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism across cases
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// RateLimitingConfig limits calls to remote retrieval providers
type RateLimitingConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size" yaml:"burst_size"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose   bool `mapstructure:"verbose" yaml:"verbose"`
	WriteJSON bool `mapstructure:"write_json" yaml:"write_json"`
}

// MarshalYAML writes durations as strings ("1m0s") instead of nanoseconds
func (c RetrievalConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Provider   string `yaml:"provider"`
		Model      string `yaml:"model"`
		APIKey     string `yaml:"api_key,omitempty"`
		BaseURL    string `yaml:"base_url,omitempty"`
		Timeout    string `yaml:"timeout"`
		MaxTokens  int    `yaml:"max_tokens"`
		Window     int    `yaml:"window"`
		HTTPProxy  string `yaml:"http_proxy,omitempty"`
		HTTPSProxy string `yaml:"https_proxy,omitempty"`
		NoProxy    string `yaml:"no_proxy,omitempty"`
	}{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout.String(),
		MaxTokens:  c.MaxTokens,
		Window:     c.Window,
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
		NoProxy:    c.NoProxy,
	}, nil
}

// MarshalYAML writes durations as strings
func (c CacheConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Enabled   bool   `yaml:"enabled"`
		Dir       string `yaml:"dir"`
		MemoryTTL string `yaml:"memory_ttl"`
		DiskTTL   string `yaml:"disk_ttl"`
	}{
		Enabled:   c.Enabled,
		Dir:       c.Dir,
		MemoryTTL: c.MemoryTTL.String(),
		DiskTTL:   c.DiskTTL.String(),
	}, nil
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Retrieval: RetrievalConfig{
			Provider:  "keyword",
			Model:     "gpt-4o-mini",
			Timeout:   60 * time.Second,
			MaxTokens: 2000,
			Window:    12,
		},
		Alignment: AlignmentConfig{
			ClampMonths: 4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".befundlink-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Output: OutputConfig{
			WriteJSON: true,
		},
	}
}
